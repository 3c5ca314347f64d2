package repos

import (
	"gorm.io/gorm"

	"github.com/openshelf/openshelf-backend/internal/data/repos/catalog"
	"github.com/openshelf/openshelf-backend/internal/data/repos/jobs"
	"github.com/openshelf/openshelf-backend/internal/data/repos/lending"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

type BookRepo = catalog.BookRepo
type LoanRepo = lending.LoanRepo
type NotificationRunRepo = jobs.NotificationRunRepo

func NewBookRepo(db *gorm.DB, baseLog *logger.Logger) BookRepo {
	return catalog.NewBookRepo(db, baseLog)
}

func NewLoanRepo(db *gorm.DB, baseLog *logger.Logger) LoanRepo {
	return lending.NewLoanRepo(db, baseLog)
}

func NewNotificationRunRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRunRepo {
	return jobs.NewNotificationRunRepo(db, baseLog)
}
