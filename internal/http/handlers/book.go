package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/http/response"
	"github.com/openshelf/openshelf-backend/internal/services"
)

type BookHandler struct {
	books services.BookService
	loans services.LoanService
}

func NewBookHandler(books services.BookService, loans services.LoanService) *BookHandler {
	return &BookHandler{books: books, loans: loans}
}

// POST /api/books
func (bh *BookHandler) Create(c *gin.Context) {
	var req struct {
		Title  string `json:"title" binding:"required"`
		Author string `json:"author" binding:"required"`
		ISBN   string `json:"isbn" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	book, err := bh.books.Create(c.Request.Context(), &types.Book{
		Title:  req.Title,
		Author: req.Author,
		ISBN:   req.ISBN,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, toBookDTO(book))
}

// GET /api/books/:id
func (bh *BookHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	book, err := bh.books.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if book == nil {
		response.RespondError(c, http.StatusNotFound, "book_not_found", nil)
		return
	}
	response.RespondOK(c, toBookDTO(book))
}

// PUT /api/books/:id
func (bh *BookHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	var req struct {
		Title  string `json:"title" binding:"required"`
		Author string `json:"author" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	book, err := bh.books.Update(c.Request.Context(), &types.Book{
		ID:     id,
		Title:  req.Title,
		Author: req.Author,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, toBookDTO(book))
}

// DELETE /api/books/:id
func (bh *BookHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	if err := bh.books.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/books?title=&author=&isbn=&page=&size=
func (bh *BookHandler) Find(c *gin.Context) {
	filter := types.BookFilter{
		Title:  c.Query("title"),
		Author: c.Query("author"),
		ISBN:   c.Query("isbn"),
	}

	page, err := bh.books.FindByFilter(c.Request.Context(), filter, pageRequestFromQuery(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, toBookPageDTO(page))
}

// GET /api/books/:id/loans
func (bh *BookHandler) LoansByBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	book, err := bh.books.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if book == nil {
		response.RespondError(c, http.StatusNotFound, "book_not_found", nil)
		return
	}

	page, err := bh.loans.FindByBook(c.Request.Context(), book.ID, pageRequestFromQuery(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, toLoanPageDTO(page))
}
