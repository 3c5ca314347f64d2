package lending

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf-backend/internal/domain/catalog"
)

// Loan references its Book by id only; the ledger never mutates book state.
// "At most one unreturned loan per book" is enforced by a partial unique
// index on (book_id) where returned = false, created in the db bootstrap.
type Loan struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookID        uuid.UUID      `gorm:"type:uuid;not null;column:book_id;index" json:"book_id"`
	Book          *catalog.Book  `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Customer      string         `gorm:"not null;column:customer;index" json:"customer"`
	CustomerEmail string         `gorm:"not null;column:customer_email" json:"customer_email"`
	LoanDate      time.Time      `gorm:"not null;column:loan_date;index" json:"loan_date"`
	Returned      bool           `gorm:"not null;default:false;column:returned;index" json:"returned"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Loan) TableName() string { return "loan" }

// LoanFilter narrows ledger searches. Criteria combine with OR: a loan
// matches when its book's ISBN equals ISBN or its customer equals Customer.
// Only supplied criteria participate.
type LoanFilter struct {
	ISBN     string
	Customer string
}
