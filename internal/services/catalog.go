package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf-backend/internal/data/pager"
	"github.com/openshelf/openshelf-backend/internal/data/repos"
	types "github.com/openshelf/openshelf-backend/internal/domain"
	apperrors "github.com/openshelf/openshelf-backend/internal/pkg/errors"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

// BookService owns the catalog rules: ISBN uniqueness on create, identifier
// preconditions on update/delete, ISBN immutability after creation.
type BookService interface {
	Create(ctx context.Context, book *types.Book) (*types.Book, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*types.Book, error)
	Update(ctx context.Context, book *types.Book) (*types.Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByFilter(ctx context.Context, filter types.BookFilter, req pager.Request) (*pager.Page[*types.Book], error)
}

type bookService struct {
	db    *gorm.DB
	log   *logger.Logger
	books repos.BookRepo
}

func NewBookService(db *gorm.DB, baseLog *logger.Logger, books repos.BookRepo) BookService {
	return &bookService{
		db:    db,
		log:   baseLog.With("service", "BookService"),
		books: books,
	}
}

func (bs *bookService) Create(ctx context.Context, book *types.Book) (*types.Book, error) {
	if book == nil || strings.TrimSpace(book.ISBN) == "" {
		return nil, fmt.Errorf("book isbn is required: %w", apperrors.ErrInvalidArgument)
	}

	exists, err := bs.books.ISBNExists(ctx, nil, book.ISBN)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("isbn %q: %w", book.ISBN, apperrors.ErrDuplicateISBN)
	}

	// The pre-check above can race with a concurrent create; the partial
	// unique index on book.isbn makes the losing insert come back as
	// ErrDuplicateISBN from the repo.
	created, err := bs.books.Create(ctx, nil, book)
	if err != nil {
		return nil, err
	}

	bs.log.Info("book created", "book_id", created.ID, "isbn", created.ISBN)
	return created, nil
}

func (bs *bookService) GetByID(ctx context.Context, id uuid.UUID) (*types.Book, error) {
	return bs.books.GetByID(ctx, nil, id)
}

func (bs *bookService) GetByISBN(ctx context.Context, isbn string) (*types.Book, error) {
	if strings.TrimSpace(isbn) == "" {
		return nil, nil
	}
	return bs.books.GetByISBN(ctx, nil, isbn)
}

func (bs *bookService) Update(ctx context.Context, book *types.Book) (*types.Book, error) {
	if book == nil || book.ID == uuid.Nil {
		return nil, fmt.Errorf("book id can't be empty: %w", apperrors.ErrInvalidArgument)
	}

	stored, err := bs.books.GetByID(ctx, nil, book.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("book %s: %w", book.ID, apperrors.ErrNotFound)
	}

	// ISBN is immutable after creation; only title and author move.
	stored.Title = book.Title
	stored.Author = book.Author

	updated, err := bs.books.Update(ctx, nil, stored)
	if err != nil {
		return nil, err
	}

	bs.log.Info("book updated", "book_id", updated.ID)
	return updated, nil
}

func (bs *bookService) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("book id can't be empty: %w", apperrors.ErrInvalidArgument)
	}

	stored, err := bs.books.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("book %s: %w", id, apperrors.ErrNotFound)
	}

	if err := bs.books.Delete(ctx, nil, id); err != nil {
		return err
	}

	bs.log.Info("book deleted", "book_id", id)
	return nil
}

func (bs *bookService) FindByFilter(ctx context.Context, filter types.BookFilter, req pager.Request) (*pager.Page[*types.Book], error) {
	return bs.books.FindByFilter(ctx, nil, filter, req)
}
