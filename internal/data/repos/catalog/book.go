package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf-backend/internal/data/pager"
	types "github.com/openshelf/openshelf-backend/internal/domain"
	apperrors "github.com/openshelf/openshelf-backend/internal/pkg/errors"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

type BookRepo interface {
	Create(ctx context.Context, tx *gorm.DB, book *types.Book) (*types.Book, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Book, error)
	GetByISBN(ctx context.Context, tx *gorm.DB, isbn string) (*types.Book, error)
	ISBNExists(ctx context.Context, tx *gorm.DB, isbn string) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, book *types.Book) (*types.Book, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	FindByFilter(ctx context.Context, tx *gorm.DB, filter types.BookFilter, req pager.Request) (*pager.Page[*types.Book], error)
}

type bookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookRepo(db *gorm.DB, baseLog *logger.Logger) BookRepo {
	repoLog := baseLog.With("repo", "BookRepo")
	return &bookRepo{db: db, log: repoLog}
}

func (br *bookRepo) Create(ctx context.Context, tx *gorm.DB, book *types.Book) (*types.Book, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}

	if err := transaction.WithContext(ctx).Create(book).Error; err != nil {
		if isUniqueViolation(err, "uq_book_isbn_active") {
			return nil, fmt.Errorf("create book: %w", apperrors.ErrDuplicateISBN)
		}
		return nil, err
	}
	return book, nil
}

func (br *bookRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Book, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var result types.Book
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (br *bookRepo) GetByISBN(ctx context.Context, tx *gorm.DB, isbn string) (*types.Book, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var result types.Book
	err := transaction.WithContext(ctx).
		Where("isbn = ?", isbn).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (br *bookRepo) ISBNExists(ctx context.Context, tx *gorm.DB, isbn string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Book{}).
		Where("isbn = ?", isbn).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (br *bookRepo) Update(ctx context.Context, tx *gorm.DB, book *types.Book) (*types.Book, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	if err := transaction.WithContext(ctx).Save(book).Error; err != nil {
		if isUniqueViolation(err, "uq_book_isbn_active") {
			return nil, fmt.Errorf("update book: %w", apperrors.ErrDuplicateISBN)
		}
		return nil, err
	}
	return book, nil
}

func (br *bookRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Book{}).Error
}

func (br *bookRepo) FindByFilter(ctx context.Context, tx *gorm.DB, filter types.BookFilter, req pager.Request) (*pager.Page[*types.Book], error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	query := transaction.Model(&types.Book{})
	query = pager.Contains(query, "title", filter.Title)
	query = pager.Contains(query, "author", filter.Author)
	query = pager.Contains(query, "isbn", filter.ISBN)

	return pager.Paginate[*types.Book](ctx, query, req)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return constraint == "" || pgErr.ConstraintName == constraint
	}
	return false
}
