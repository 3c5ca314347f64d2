package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openshelf/openshelf-backend/internal/data/pager"
	types "github.com/openshelf/openshelf-backend/internal/domain"
)

type bookDTO struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	ISBN   string    `json:"isbn"`
}

type loanDTO struct {
	ID            uuid.UUID `json:"id"`
	Customer      string    `json:"customer"`
	CustomerEmail string    `json:"customer_email"`
	LoanDate      string    `json:"loan_date"`
	Returned      bool      `json:"returned"`
	Book          *bookDTO  `json:"book,omitempty"`
}

type pageDTO[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"total_elements"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
}

func toBookDTO(b *types.Book) *bookDTO {
	if b == nil {
		return nil
	}
	return &bookDTO{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		ISBN:   b.ISBN,
	}
}

func toLoanDTO(l *types.Loan) *loanDTO {
	if l == nil {
		return nil
	}
	return &loanDTO{
		ID:            l.ID,
		Customer:      l.Customer,
		CustomerEmail: l.CustomerEmail,
		LoanDate:      l.LoanDate.Format(time.DateOnly),
		Returned:      l.Returned,
		Book:          toBookDTO(l.Book),
	}
}

func toLoanPageDTO(page *pager.Page[*types.Loan]) pageDTO[*loanDTO] {
	content := make([]*loanDTO, 0, len(page.Content))
	for _, l := range page.Content {
		content = append(content, toLoanDTO(l))
	}
	return pageDTO[*loanDTO]{
		Content:       content,
		TotalElements: page.TotalElements,
		Page:          page.Page,
		Size:          page.Size,
	}
}

func toBookPageDTO(page *pager.Page[*types.Book]) pageDTO[*bookDTO] {
	content := make([]*bookDTO, 0, len(page.Content))
	for _, b := range page.Content {
		content = append(content, toBookDTO(b))
	}
	return pageDTO[*bookDTO]{
		Content:       content,
		TotalElements: page.TotalElements,
		Page:          page.Page,
		Size:          page.Size,
	}
}

func pageRequestFromQuery(c *gin.Context) pager.Request {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	return pager.Request{Page: page, Size: size}
}
