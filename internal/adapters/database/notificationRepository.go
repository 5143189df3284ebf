package database

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"postpilot/internal/config"
	"postpilot/internal/core/notification"
)

type NotificationRepositoryDatabase struct{}

func NewNotificationRepositoryDatabase() *NotificationRepositoryDatabase {
	return &NotificationRepositoryDatabase{}
}

func (repo *NotificationRepositoryDatabase) Create(ctx context.Context, n *notification.Notification) (*notification.Notification, error) {
	if err := config.DB.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

func (repo *NotificationRepositoryDatabase) GetPending(ctx context.Context, limit int64) ([]*notification.Notification, error) {
	var pending []*notification.Notification
	if err := config.DB.WithContext(ctx).
		Where("status = ?", notification.StatusPending).
		Order("created_at").
		Limit(int(limit)).
		Find(&pending).Error; err != nil {
		return nil, err
	}
	return pending, nil
}

func (repo *NotificationRepositoryDatabase) MarkDone(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return config.DB.WithContext(ctx).Model(&notification.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": notification.StatusDone, "processed_at": now}).Error
}
