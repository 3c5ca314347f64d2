package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	NotificationRunStatusSent   = "sent"
	NotificationRunStatusEmpty  = "empty"
	NotificationRunStatusFailed = "failed"
)

// NotificationRun records one pass of the overdue notifier so operators can
// see what each scheduled run did without trawling logs.
type NotificationRun struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Status        string         `gorm:"column:status;not null;index" json:"status"`
	ThresholdDays int            `gorm:"column:threshold_days;not null" json:"threshold_days"`
	OverdueCount  int            `gorm:"column:overdue_count;not null;default:0" json:"overdue_count"`
	Recipients    datatypes.JSON `gorm:"column:recipients;type:jsonb" json:"recipients"`
	Error         string         `gorm:"column:error" json:"error,omitempty"`
	StartedAt     time.Time      `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt    time.Time      `gorm:"column:finished_at;not null" json:"finished_at"`
	CreatedAt     time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (NotificationRun) TableName() string { return "notification_run" }
