package connection

import (
	"context"
	"time"

	"postpilot/internal/core/connection"
)

// ConnectionRepository is the persistence port for platform credentials.
type ConnectionRepository interface {
	// Upsert inserts or replaces the row keyed by (userID, platform,
	// accountID). This is the OAuth callback's single terminal write.
	Upsert(ctx context.Context, conn *connection.Connection) (*connection.Connection, error)
	// FindConnected returns the user's connected credential for a platform.
	FindConnected(ctx context.Context, userID, platform string) (*connection.Connection, error)
	ListByUser(ctx context.Context, userID string) ([]*connection.Connection, error)
	MarkExpired(ctx context.Context, id string) error
	// ExpireStale marks connected rows whose expiry passed and that hold no
	// refresh token; returns the number of rows flipped.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type ConnectionDTO struct {
	Platform    string  `json:"platform"`
	AccountID   string  `json:"account_id"`
	AccountName string  `json:"account_name"`
	Status      string  `json:"status"`
	ExpiresAt   *string `json:"expires_at,omitempty"`
}
