package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	types "github.com/openshelf/openshelf-backend/internal/domain"
	apperrors "github.com/openshelf/openshelf-backend/internal/pkg/errors"
	"github.com/openshelf/openshelf-backend/internal/platform/envutil"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := envutil.String("POSTGRES_HOST", "localhost")
	postgresPort := envutil.String("POSTGRES_PORT", "5432")
	postgresUser := envutil.String("POSTGRES_USER", "postgres")
	postgresPassword := envutil.String("POSTGRES_PASSWORD", "")
	postgresName := envutil.String("POSTGRES_NAME", "openshelf")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...", "host", postgresHost, "db", postgresName)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect to postgres (%v): %w", err, apperrors.ErrStorageUnavailable)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := Migrate(s.db); err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

// Migrate creates the schema plus the constraints the domain invariants rely
// on. The two partial unique indexes are what make the "check then insert"
// sequences in the services safe under concurrent callers: a racer that slips
// past the pre-check hits a unique violation the repos translate back into
// the duplicate-ISBN / loan-conflict sentinels. Shared with the repo test
// bootstrap so tests run against the production schema.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp extension: %w", err)
	}

	if err := gdb.AutoMigrate(
		&types.Book{},
		&types.Loan{},
		&types.NotificationRun{},
	); err != nil {
		return err
	}

	if err := gdb.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uq_book_isbn_active
		ON book (isbn)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return fmt.Errorf("create uq_book_isbn_active: %w", err)
	}

	if err := gdb.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uq_loan_active_book
		ON loan (book_id)
		WHERE returned = false AND deleted_at IS NULL
	`).Error; err != nil {
		return fmt.Errorf("create uq_loan_active_book: %w", err)
	}

	if err := gdb.Exec(`
		ALTER TABLE "loan"
		DROP CONSTRAINT IF EXISTS "fk_loan_book_id";
	`).Error; err != nil {
		return fmt.Errorf("drop fk_loan_book_id: %w", err)
	}
	if err := gdb.Exec(`
		ALTER TABLE "loan"
		ADD CONSTRAINT "fk_loan_book_id"
		FOREIGN KEY ("book_id")
		REFERENCES "book"("id")
	`).Error; err != nil {
		return fmt.Errorf("add fk_loan_book_id: %w", err)
	}

	return nil
}
