package domain

import (
	"github.com/openshelf/openshelf-backend/internal/domain/catalog"
	"github.com/openshelf/openshelf-backend/internal/domain/jobs"
	"github.com/openshelf/openshelf-backend/internal/domain/lending"
)

type Book = catalog.Book
type BookFilter = catalog.BookFilter

type Loan = lending.Loan
type LoanFilter = lending.LoanFilter

type NotificationRun = jobs.NotificationRun

const (
	NotificationRunStatusSent   = jobs.NotificationRunStatusSent
	NotificationRunStatusEmpty  = jobs.NotificationRunStatusEmpty
	NotificationRunStatusFailed = jobs.NotificationRunStatusFailed
)
