package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf-backend/internal/data/pager"
	"github.com/openshelf/openshelf-backend/internal/data/repos"
	types "github.com/openshelf/openshelf-backend/internal/domain"
	apperrors "github.com/openshelf/openshelf-backend/internal/pkg/errors"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

// LoanService owns the ledger rules: at most one unreturned loan per book,
// loan-date stamping at creation, and the returned flag's one-way transition.
type LoanService interface {
	Create(ctx context.Context, loan *types.Loan) (*types.Loan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Loan, error)
	Update(ctx context.Context, loan *types.Loan) (*types.Loan, error)
	FindByFilter(ctx context.Context, filter types.LoanFilter, req pager.Request) (*pager.Page[*types.Loan], error)
	FindByBook(ctx context.Context, bookID uuid.UUID, req pager.Request) (*pager.Page[*types.Loan], error)
	AllOverdue(ctx context.Context, thresholdDays int) ([]*types.Loan, error)
}

type loanService struct {
	db    *gorm.DB
	log   *logger.Logger
	loans repos.LoanRepo
	now   func() time.Time
}

func NewLoanService(db *gorm.DB, baseLog *logger.Logger, loans repos.LoanRepo) LoanService {
	return &loanService{
		db:    db,
		log:   baseLog.With("service", "LoanService"),
		loans: loans,
		now:   time.Now,
	}
}

func (ls *loanService) Create(ctx context.Context, loan *types.Loan) (*types.Loan, error) {
	if loan == nil || loan.BookID == uuid.Nil {
		return nil, fmt.Errorf("loan book is required: %w", apperrors.ErrInvalidArgument)
	}

	active, err := ls.loans.ActiveLoanExists(ctx, nil, loan.BookID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, fmt.Errorf("book %s: %w", loan.BookID, apperrors.ErrLoanConflict)
	}

	if loan.LoanDate.IsZero() {
		loan.LoanDate = dateOf(ls.now())
	}

	// The active-loan pre-check can race; the partial unique index on
	// loan(book_id) where returned = false turns the losing insert into
	// ErrLoanConflict at the repo.
	created, err := ls.loans.Create(ctx, nil, loan)
	if err != nil {
		return nil, err
	}

	ls.log.Info("loan created", "loan_id", created.ID, "book_id", created.BookID, "customer", created.Customer)
	return created, nil
}

func (ls *loanService) GetByID(ctx context.Context, id uuid.UUID) (*types.Loan, error) {
	return ls.loans.GetByID(ctx, nil, id)
}

func (ls *loanService) Update(ctx context.Context, loan *types.Loan) (*types.Loan, error) {
	if loan == nil || loan.ID == uuid.Nil {
		return nil, fmt.Errorf("loan id can't be empty: %w", apperrors.ErrInvalidArgument)
	}

	stored, err := ls.loans.GetByID(ctx, nil, loan.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("loan %s: %w", loan.ID, apperrors.ErrNotFound)
	}

	// returned only ever moves false -> true.
	if stored.Returned {
		loan.Returned = true
	}
	// The book reference and loan date are fixed at creation.
	loan.BookID = stored.BookID
	loan.LoanDate = stored.LoanDate

	updated, err := ls.loans.Update(ctx, nil, loan)
	if err != nil {
		return nil, err
	}

	ls.log.Info("loan updated", "loan_id", updated.ID, "returned", updated.Returned)
	return updated, nil
}

func (ls *loanService) FindByFilter(ctx context.Context, filter types.LoanFilter, req pager.Request) (*pager.Page[*types.Loan], error) {
	return ls.loans.FindByFilter(ctx, nil, filter, req)
}

func (ls *loanService) FindByBook(ctx context.Context, bookID uuid.UUID, req pager.Request) (*pager.Page[*types.Loan], error) {
	if bookID == uuid.Nil {
		return nil, fmt.Errorf("book id can't be empty: %w", apperrors.ErrInvalidArgument)
	}
	return ls.loans.FindByBook(ctx, nil, bookID, req)
}

// AllOverdue returns unreturned loans at least thresholdDays old. The cutoff
// is inclusive: a loan dated exactly thresholdDays ago is overdue.
func (ls *loanService) AllOverdue(ctx context.Context, thresholdDays int) ([]*types.Loan, error) {
	if thresholdDays < 0 {
		return nil, fmt.Errorf("threshold days can't be negative: %w", apperrors.ErrInvalidArgument)
	}
	cutoff := dateOf(ls.now()).AddDate(0, 0, -thresholdDays)
	return ls.loans.FindOverdue(ctx, nil, cutoff)
}

// dateOf truncates to a calendar date in UTC; loan dates carry no time of
// day.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
