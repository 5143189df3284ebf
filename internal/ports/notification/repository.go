package notification

import (
	"context"

	"github.com/gofrs/uuid"
	"postpilot/internal/core/notification"
)

// NotificationRepository is the DB-backed pending queue drained by the
// notification worker.
type NotificationRepository interface {
	Create(ctx context.Context, n *notification.Notification) (*notification.Notification, error)
	GetPending(ctx context.Context, limit int64) ([]*notification.Notification, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
}

// NotificationFeed is the Redis-backed per-user feed the UI reads.
type NotificationFeed interface {
	Push(ctx context.Context, userID string, entry FeedEntry) error
	Recent(ctx context.Context, userID string, limit int64) ([]FeedEntry, error)
}

type FeedEntry struct {
	Kind      string `json:"kind"`
	PostID    string `json:"post_id"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}
