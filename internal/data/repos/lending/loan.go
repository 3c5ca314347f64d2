package lending

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf-backend/internal/data/pager"
	types "github.com/openshelf/openshelf-backend/internal/domain"
	apperrors "github.com/openshelf/openshelf-backend/internal/pkg/errors"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

type LoanRepo interface {
	Create(ctx context.Context, tx *gorm.DB, loan *types.Loan) (*types.Loan, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Loan, error)
	Update(ctx context.Context, tx *gorm.DB, loan *types.Loan) (*types.Loan, error)
	ActiveLoanExists(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (bool, error)
	FindByFilter(ctx context.Context, tx *gorm.DB, filter types.LoanFilter, req pager.Request) (*pager.Page[*types.Loan], error)
	FindByBook(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, req pager.Request) (*pager.Page[*types.Loan], error)
	FindOverdue(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.Loan, error)
}

type loanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLoanRepo(db *gorm.DB, baseLog *logger.Logger) LoanRepo {
	repoLog := baseLog.With("repo", "LoanRepo")
	return &loanRepo{db: db, log: repoLog}
}

func (lr *loanRepo) Create(ctx context.Context, tx *gorm.DB, loan *types.Loan) (*types.Loan, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}

	if err := transaction.WithContext(ctx).Omit("Book").Create(loan).Error; err != nil {
		if isUniqueViolation(err, "uq_loan_active_book") {
			return nil, fmt.Errorf("create loan: %w", apperrors.ErrLoanConflict)
		}
		return nil, err
	}
	return loan, nil
}

func (lr *loanRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Loan, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var result types.Loan
	err := transaction.WithContext(ctx).
		Preload("Book").
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

func (lr *loanRepo) Update(ctx context.Context, tx *gorm.DB, loan *types.Loan) (*types.Loan, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	if err := transaction.WithContext(ctx).Omit("Book").Save(loan).Error; err != nil {
		if isUniqueViolation(err, "uq_loan_active_book") {
			return nil, fmt.Errorf("update loan: %w", apperrors.ErrLoanConflict)
		}
		return nil, err
	}
	return loan, nil
}

func (lr *loanRepo) ActiveLoanExists(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Loan{}).
		Where("book_id = ? AND returned = false", bookID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByFilter combines the supplied criteria with OR, each as an exact
// match; an absent criterion does not constrain.
func (lr *loanRepo) FindByFilter(ctx context.Context, tx *gorm.DB, filter types.LoanFilter, req pager.Request) (*pager.Page[*types.Loan], error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	query := transaction.Model(&types.Loan{}).Preload("Book")

	isbn := strings.TrimSpace(filter.ISBN)
	customer := strings.TrimSpace(filter.Customer)
	switch {
	case isbn != "" && customer != "":
		query = query.
			Joins("JOIN book ON book.id = loan.book_id").
			Where("book.isbn = ? OR loan.customer = ?", isbn, customer)
	case isbn != "":
		query = query.
			Joins("JOIN book ON book.id = loan.book_id").
			Where("book.isbn = ?", isbn)
	case customer != "":
		query = query.Where("loan.customer = ?", customer)
	}

	return pager.Paginate[*types.Loan](ctx, query, req)
}

func (lr *loanRepo) FindByBook(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, req pager.Request) (*pager.Page[*types.Loan], error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	query := transaction.Model(&types.Loan{}).
		Preload("Book").
		Where("book_id = ?", bookID)

	return pager.Paginate[*types.Loan](ctx, query, req)
}

// FindOverdue returns unreturned loans dated at or before cutoff. The
// boundary is inclusive: a loan dated exactly cutoff is overdue.
func (lr *loanRepo) FindOverdue(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.Loan, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var results []*types.Loan
	if err := transaction.WithContext(ctx).
		Preload("Book").
		Where("returned = false AND loan_date <= ?", cutoff).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return constraint == "" || pgErr.ConstraintName == constraint
	}
	return false
}
