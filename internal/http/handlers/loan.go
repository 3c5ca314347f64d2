package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/http/response"
	"github.com/openshelf/openshelf-backend/internal/services"
)

type LoanHandler struct {
	loans services.LoanService
	books services.BookService
}

func NewLoanHandler(loans services.LoanService, books services.BookService) *LoanHandler {
	return &LoanHandler{loans: loans, books: books}
}

// POST /api/loans
// The book is resolved by ISBN here at the boundary; the ledger itself only
// ever sees a book id.
func (lh *LoanHandler) Create(c *gin.Context) {
	var req struct {
		ISBN          string `json:"isbn" binding:"required"`
		Customer      string `json:"customer" binding:"required"`
		CustomerEmail string `json:"customer_email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	book, err := lh.books.GetByISBN(c.Request.Context(), req.ISBN)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if book == nil {
		response.RespondError(c, http.StatusBadRequest, "book_not_found_for_isbn", nil)
		return
	}

	loan, err := lh.loans.Create(c.Request.Context(), &types.Loan{
		BookID:        book.ID,
		Customer:      req.Customer,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"id": loan.ID})
}

// GET /api/loans/:id
func (lh *LoanHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	loan, err := lh.loans.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if loan == nil {
		response.RespondError(c, http.StatusNotFound, "loan_not_found", nil)
		return
	}
	response.RespondOK(c, toLoanDTO(loan))
}

// PATCH /api/loans/:id
// body: { "returned": true }
func (lh *LoanHandler) ReturnBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	var req struct {
		Returned *bool `json:"returned" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	loan, err := lh.loans.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if loan == nil {
		response.RespondError(c, http.StatusNotFound, "loan_not_found", nil)
		return
	}

	loan.Returned = *req.Returned
	if _, err := lh.loans.Update(c.Request.Context(), loan); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/loans?isbn=&customer=&page=&size=
func (lh *LoanHandler) Find(c *gin.Context) {
	filter := types.LoanFilter{
		ISBN:     c.Query("isbn"),
		Customer: c.Query("customer"),
	}

	page, err := lh.loans.FindByFilter(c.Request.Context(), filter, pageRequestFromQuery(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, toLoanPageDTO(page))
}
