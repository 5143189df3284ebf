package workers

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	connectionPort "postpilot/internal/ports/connection"
)

// ExpiryWorker periodically flips connections whose token expiry has passed
// (and that hold no refresh token) to Expired, so the UI can prompt a
// reconnect before the next publish fails.
type ExpiryWorker struct {
	ConnectionRepo connectionPort.ConnectionRepository
	Logger         *zap.Logger
	cron           *cron.Cron
}

func NewExpiryWorker(repo connectionPort.ConnectionRepository, logger *zap.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		ConnectionRepo: repo,
		Logger:         logger,
		cron:           cron.New(),
	}
}

func (w *ExpiryWorker) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc("@every 5m", func() {
		n, err := w.ConnectionRepo.ExpireStale(ctx, time.Now())
		if err != nil {
			w.Logger.Error("❌ Error expiring stale connections:", zap.Error(err))
			return
		}
		if n > 0 {
			w.Logger.Info("✅ Marked stale connections expired", zap.Int64("count", n))
		}
	})
	if err != nil {
		return err
	}
	w.cron.Start()
	w.Logger.Info("🚀 ExpiryWorker started")
	return nil
}

func (w *ExpiryWorker) Stop() {
	w.cron.Stop()
	w.Logger.Info("🛑 Expiry worker stopped")
}
