package notification

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	KindPostPublished = "post_published"
	KindPostFailed    = "post_failed"
)

const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// Notification rows are written by the publish worker and drained into the
// per-user Redis feed by the notification worker.
type Notification struct {
	ID          uuid.UUID  `gorm:"primary_key;type:char(36)"`
	UserID      uuid.UUID  `gorm:"type:char(36);not null;index"`
	PostID      uuid.UUID  `gorm:"type:char(36);not null"`
	Kind        string     `gorm:"type:varchar(32);not null"`
	Message     string     `gorm:"type:text;not null"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	ProcessedAt *time.Time `gorm:"index"`
}
