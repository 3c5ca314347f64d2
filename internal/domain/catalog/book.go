package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book is a catalog record. ISBN uniqueness across non-deleted rows is
// enforced by a partial unique index created in the db bootstrap, not by a
// gorm tag, because the index must ignore soft-deleted rows.
type Book struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title     string         `gorm:"not null;column:title" json:"title"`
	Author    string         `gorm:"not null;column:author" json:"author"`
	ISBN      string         `gorm:"not null;column:isbn;index" json:"isbn"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Book) TableName() string { return "book" }

// BookFilter narrows catalog searches. Empty fields impose no constraint;
// set fields match case-insensitively by substring containment.
type BookFilter struct {
	Title  string
	Author string
	ISBN   string
}
