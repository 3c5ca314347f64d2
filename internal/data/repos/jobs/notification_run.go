package jobs

import (
	"context"

	"gorm.io/gorm"

	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

type NotificationRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *types.NotificationRun) (*types.NotificationRun, error)
	Latest(ctx context.Context, tx *gorm.DB, limit int) ([]*types.NotificationRun, error)
}

type notificationRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRunRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRunRepo {
	repoLog := baseLog.With("repo", "NotificationRunRepo")
	return &notificationRunRepo{db: db, log: repoLog}
}

func (nr *notificationRunRepo) Create(ctx context.Context, tx *gorm.DB, run *types.NotificationRun) (*types.NotificationRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}

	if err := transaction.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (nr *notificationRunRepo) Latest(ctx context.Context, tx *gorm.DB, limit int) ([]*types.NotificationRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}
	if limit <= 0 {
		limit = 20
	}

	var results []*types.NotificationRun
	if err := transaction.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
