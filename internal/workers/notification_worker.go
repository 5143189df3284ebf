package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	notificationPort "postpilot/internal/ports/notification"
)

// NotificationWorker drains pending notification rows into the per-user
// Redis feed. Rows stay pending on a push failure and are retried on the
// next poll.
type NotificationWorker struct {
	NotificationRepo notificationPort.NotificationRepository
	Feed             notificationPort.NotificationFeed
	BatchSize        int
	Logger           *zap.Logger
}

func NewNotificationWorker(
	repo notificationPort.NotificationRepository,
	feed notificationPort.NotificationFeed,
	batchSize int,
	logger *zap.Logger,
) *NotificationWorker {
	return &NotificationWorker{
		NotificationRepo: repo,
		Feed:             feed,
		BatchSize:        batchSize,
		Logger:           logger,
	}
}

func (w *NotificationWorker) Run(ctx context.Context) {
	w.Logger.Info("🚀 NotificationWorker started")
	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("🛑 Notification worker stopped")
			return
		default:
			pending, err := w.NotificationRepo.GetPending(ctx, int64(w.BatchSize))
			if err != nil {
				w.Logger.Error("❌ Error fetching pending notifications:", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}

			for _, n := range pending {
				entry := notificationPort.FeedEntry{
					Kind:      n.Kind,
					PostID:    n.PostID.String(),
					Message:   n.Message,
					CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
				}
				if err := w.Feed.Push(ctx, n.UserID.String(), entry); err != nil {
					w.Logger.Error("❌ Error pushing notification to feed:",
						zap.String("ID", n.ID.String()), zap.Error(err))
					continue
				}
				if err := w.NotificationRepo.MarkDone(ctx, n.ID); err != nil {
					w.Logger.Warn("⚠️ Warning: could not mark notification done:",
						zap.String("ID", n.ID.String()), zap.Error(err))
				}
			}

			time.Sleep(1000 * time.Millisecond)
		}
	}
}
