package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openshelf/openshelf-backend/internal/data/pager"
	types "github.com/openshelf/openshelf-backend/internal/domain"
	apperrors "github.com/openshelf/openshelf-backend/internal/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeBookService serves from a map; Create honors the duplicate-ISBN rule so
// the handler tests can exercise the error mapping end to end.
type fakeBookService struct {
	books map[uuid.UUID]*types.Book
	err   error
}

func newFakeBookService() *fakeBookService {
	return &fakeBookService{books: map[uuid.UUID]*types.Book{}}
}

func (f *fakeBookService) Create(_ context.Context, book *types.Book) (*types.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, b := range f.books {
		if b.ISBN == book.ISBN {
			return nil, fmt.Errorf("isbn %q: %w", book.ISBN, apperrors.ErrDuplicateISBN)
		}
	}
	book.ID = uuid.New()
	f.books[book.ID] = book
	return book, nil
}

func (f *fakeBookService) GetByID(_ context.Context, id uuid.UUID) (*types.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.books[id], nil
}

func (f *fakeBookService) GetByISBN(_ context.Context, isbn string) (*types.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, b := range f.books {
		if b.ISBN == isbn {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBookService) Update(_ context.Context, book *types.Book) (*types.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	stored, ok := f.books[book.ID]
	if !ok {
		return nil, fmt.Errorf("book %s: %w", book.ID, apperrors.ErrNotFound)
	}
	stored.Title = book.Title
	stored.Author = book.Author
	return stored, nil
}

func (f *fakeBookService) Delete(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.books[id]; !ok {
		return fmt.Errorf("book %s: %w", id, apperrors.ErrNotFound)
	}
	delete(f.books, id)
	return nil
}

func (f *fakeBookService) FindByFilter(_ context.Context, _ types.BookFilter, req pager.Request) (*pager.Page[*types.Book], error) {
	if f.err != nil {
		return nil, f.err
	}
	req = req.Normalize()
	content := make([]*types.Book, 0, len(f.books))
	for _, b := range f.books {
		content = append(content, b)
	}
	return &pager.Page[*types.Book]{
		Content:       content,
		TotalElements: int64(len(content)),
		Page:          req.Page,
		Size:          req.Size,
	}, nil
}

type fakeLoanService struct {
	loans map[uuid.UUID]*types.Loan
	err   error
}

func newFakeLoanService() *fakeLoanService {
	return &fakeLoanService{loans: map[uuid.UUID]*types.Loan{}}
}

func (f *fakeLoanService) Create(_ context.Context, loan *types.Loan) (*types.Loan, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, l := range f.loans {
		if l.BookID == loan.BookID && !l.Returned {
			return nil, fmt.Errorf("book %s: %w", loan.BookID, apperrors.ErrLoanConflict)
		}
	}
	loan.ID = uuid.New()
	if loan.LoanDate.IsZero() {
		loan.LoanDate = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	}
	f.loans[loan.ID] = loan
	return loan, nil
}

func (f *fakeLoanService) GetByID(_ context.Context, id uuid.UUID) (*types.Loan, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.loans[id], nil
}

func (f *fakeLoanService) Update(_ context.Context, loan *types.Loan) (*types.Loan, error) {
	if f.err != nil {
		return nil, f.err
	}
	stored, ok := f.loans[loan.ID]
	if !ok {
		return nil, fmt.Errorf("loan %s: %w", loan.ID, apperrors.ErrNotFound)
	}
	if loan.Returned {
		stored.Returned = true
	}
	return stored, nil
}

func (f *fakeLoanService) FindByFilter(_ context.Context, filter types.LoanFilter, req pager.Request) (*pager.Page[*types.Loan], error) {
	if f.err != nil {
		return nil, f.err
	}
	req = req.Normalize()
	content := []*types.Loan{}
	for _, l := range f.loans {
		if filter.Customer != "" && l.Customer == filter.Customer {
			content = append(content, l)
		}
	}
	return &pager.Page[*types.Loan]{
		Content:       content,
		TotalElements: int64(len(content)),
		Page:          req.Page,
		Size:          req.Size,
	}, nil
}

func (f *fakeLoanService) FindByBook(_ context.Context, bookID uuid.UUID, req pager.Request) (*pager.Page[*types.Loan], error) {
	if f.err != nil {
		return nil, f.err
	}
	req = req.Normalize()
	content := []*types.Loan{}
	for _, l := range f.loans {
		if l.BookID == bookID {
			content = append(content, l)
		}
	}
	return &pager.Page[*types.Loan]{
		Content:       content,
		TotalElements: int64(len(content)),
		Page:          req.Page,
		Size:          req.Size,
	}, nil
}

func (f *fakeLoanService) AllOverdue(_ context.Context, _ int) ([]*types.Loan, error) {
	return nil, nil
}

func testRouter(books *fakeBookService, loans *fakeLoanService) *gin.Engine {
	router := gin.New()
	bh := NewBookHandler(books, loans)
	lh := NewLoanHandler(loans, books)

	api := router.Group("/api")
	api.POST("/books", bh.Create)
	api.GET("/books", bh.Find)
	api.GET("/books/:id", bh.Get)
	api.PUT("/books/:id", bh.Update)
	api.DELETE("/books/:id", bh.Delete)
	api.GET("/books/:id/loans", bh.LoansByBook)
	api.POST("/loans", lh.Create)
	api.GET("/loans", lh.Find)
	api.GET("/loans/:id", lh.Get)
	api.PATCH("/loans/:id", lh.ReturnBook)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v (body %s)", err, rec.Body.String())
	}
	return envelope.Error.Code
}

func TestBookHandlerCreate(t *testing.T) {
	router := testRouter(newFakeBookService(), newFakeLoanService())

	rec := doJSON(t, router, http.MethodPost, "/api/books", gin.H{
		"title": "T", "author": "A", "isbn": "isbn-1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	var body bookDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID == uuid.Nil || body.ISBN != "isbn-1" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestBookHandlerCreateMissingFields(t *testing.T) {
	router := testRouter(newFakeBookService(), newFakeLoanService())

	rec := doJSON(t, router, http.MethodPost, "/api/books", gin.H{"title": "T"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBookHandlerCreateDuplicateISBN(t *testing.T) {
	books := newFakeBookService()
	router := testRouter(books, newFakeLoanService())

	payload := gin.H{"title": "T", "author": "A", "isbn": "isbn-1"}
	if rec := doJSON(t, router, http.MethodPost, "/api/books", payload); rec.Code != http.StatusCreated {
		t.Fatalf("first create: %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/books", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "isbn_already_registered" {
		t.Fatalf("expected isbn_already_registered, got %q", code)
	}
}

func TestBookHandlerGetInvalidID(t *testing.T) {
	router := testRouter(newFakeBookService(), newFakeLoanService())

	rec := doJSON(t, router, http.MethodGet, "/api/books/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "invalid_id" {
		t.Fatalf("expected invalid_id, got %q", code)
	}
}

func TestBookHandlerGetNotFound(t *testing.T) {
	router := testRouter(newFakeBookService(), newFakeLoanService())

	rec := doJSON(t, router, http.MethodGet, "/api/books/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBookHandlerDelete(t *testing.T) {
	books := newFakeBookService()
	router := testRouter(books, newFakeLoanService())

	created, err := books.Create(context.Background(), &types.Book{Title: "T", Author: "A", ISBN: "isbn-1"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doJSON(t, router, http.MethodDelete, "/api/books/"+created.ID.String(), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/books/"+created.ID.String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestBookHandlerFindReportsTotals(t *testing.T) {
	books := newFakeBookService()
	router := testRouter(books, newFakeLoanService())

	for i := 0; i < 3; i++ {
		if _, err := books.Create(context.Background(), &types.Book{
			Title: "T", Author: "A", ISBN: fmt.Sprintf("isbn-%d", i),
		}); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/api/books?page=0&size=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var page pageDTO[*bookDTO]
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.TotalElements != 3 {
		t.Fatalf("expected total 3, got %d", page.TotalElements)
	}
	if page.Size != 2 || page.Page != 0 {
		t.Fatalf("unexpected page metadata: %+v", page)
	}
}

func TestLoanHandlerCreateResolvesBookByISBN(t *testing.T) {
	books := newFakeBookService()
	router := testRouter(books, newFakeLoanService())

	if _, err := books.Create(context.Background(), &types.Book{Title: "T", Author: "A", ISBN: "isbn-1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/loans", gin.H{
		"isbn": "isbn-1", "customer": "Ada", "customer_email": "ada@example.com",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	var body struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID == uuid.Nil {
		t.Fatal("expected a loan id")
	}
}

func TestLoanHandlerCreateUnknownISBN(t *testing.T) {
	router := testRouter(newFakeBookService(), newFakeLoanService())

	rec := doJSON(t, router, http.MethodPost, "/api/loans", gin.H{
		"isbn": "nope", "customer": "Ada", "customer_email": "ada@example.com",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "book_not_found_for_isbn" {
		t.Fatalf("expected book_not_found_for_isbn, got %q", code)
	}
}

func TestLoanHandlerCreateConflict(t *testing.T) {
	books := newFakeBookService()
	router := testRouter(books, newFakeLoanService())

	if _, err := books.Create(context.Background(), &types.Book{Title: "T", Author: "A", ISBN: "isbn-1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	payload := gin.H{"isbn": "isbn-1", "customer": "Ada", "customer_email": "ada@example.com"}
	if rec := doJSON(t, router, http.MethodPost, "/api/loans", payload); rec.Code != http.StatusCreated {
		t.Fatalf("first loan: %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/loans", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "book_already_loaned" {
		t.Fatalf("expected book_already_loaned, got %q", code)
	}
}

func TestLoanHandlerCreateInvalidEmail(t *testing.T) {
	books := newFakeBookService()
	router := testRouter(books, newFakeLoanService())

	if _, err := books.Create(context.Background(), &types.Book{Title: "T", Author: "A", ISBN: "isbn-1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/loans", gin.H{
		"isbn": "isbn-1", "customer": "Ada", "customer_email": "not-an-email",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoanHandlerReturnFlow(t *testing.T) {
	books := newFakeBookService()
	loans := newFakeLoanService()
	router := testRouter(books, loans)

	if _, err := books.Create(context.Background(), &types.Book{Title: "T", Author: "A", ISBN: "isbn-1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	payload := gin.H{"isbn": "isbn-1", "customer": "Ada", "customer_email": "ada@example.com"}
	rec := doJSON(t, router, http.MethodPost, "/api/loans", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create loan: %d", rec.Code)
	}
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(t, router, http.MethodPatch, "/api/loans/"+created.ID.String(), gin.H{"returned": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("return: %d (%s)", rec.Code, rec.Body.String())
	}

	// The same book is loanable again once returned.
	rec = doJSON(t, router, http.MethodPost, "/api/loans", gin.H{
		"isbn": "isbn-1", "customer": "Grace", "customer_email": "grace@example.com",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("second loan after return: %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestLoanHandlerReturnUnknownLoan(t *testing.T) {
	router := testRouter(newFakeBookService(), newFakeLoanService())

	rec := doJSON(t, router, http.MethodPatch, "/api/loans/"+uuid.NewString(), gin.H{"returned": true})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBookHandlerLoansByBook(t *testing.T) {
	books := newFakeBookService()
	loans := newFakeLoanService()
	router := testRouter(books, loans)
	ctx := context.Background()

	book, err := books.Create(ctx, &types.Book{Title: "T", Author: "A", ISBN: "isbn-1"})
	if err != nil {
		t.Fatalf("seed book: %v", err)
	}
	if _, err := loans.Create(ctx, &types.Loan{
		BookID: book.ID, Customer: "Ada", CustomerEmail: "ada@example.com", Returned: true,
	}); err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/books/"+book.ID.String()+"/loans", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var page pageDTO[*loanDTO]
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.TotalElements != 1 {
		t.Fatalf("expected 1 loan, got %d", page.TotalElements)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/books/"+uuid.NewString()+"/loans", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown book, got %d", rec.Code)
	}
}
