package connection

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
)

// ErrNotFound covers connections absent or owned by another user.
var ErrNotFound = errors.New("platform connection not found")

// ErrUnsupportedPlatform is returned when no provider is configured for the
// requested platform id.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

const (
	StatusConnected = "connected"
	StatusExpired   = "expired"
)

// Connection stores one user's credential for one platform account. Tokens
// are held only as vault envelopes plus fingerprints; plaintext never leaves
// the decrypt call scope. Reconnecting the same account upserts the row.
type Connection struct {
	ID                    uuid.UUID  `gorm:"primary_key;type:char(36)"`
	UserID                uuid.UUID  `gorm:"type:char(36);not null;uniqueIndex:idx_user_platform_account"`
	Platform              string     `gorm:"type:varchar(32);not null;uniqueIndex:idx_user_platform_account"`
	AccountID             string     `gorm:"type:varchar(128);not null;uniqueIndex:idx_user_platform_account"`
	AccountName           string     `gorm:"type:varchar(128)"`
	AccessTokenEncrypted  string     `gorm:"type:text;not null"`
	RefreshTokenEncrypted *string    `gorm:"type:text"`
	AccessTokenHash       string     `gorm:"type:char(64);not null"`
	RefreshTokenHash      *string    `gorm:"type:char(64)"`
	ExpiresAt             *time.Time `gorm:"index"`
	Status                string     `gorm:"type:varchar(20);not null;default:'connected'"`
	CreatedAt             time.Time  `gorm:"autoCreateTime"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime"`
}
