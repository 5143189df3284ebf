package schedule

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"postpilot/internal/core/post"
)

// ErrInsufficientWindow means the rule could not yield the requested number
// of timestamps inside the 365-day expansion bound (e.g. an empty custom day
// set). The batch is rejected before any record is written.
var ErrInsufficientWindow = errors.New("rule cannot satisfy requested count within schedule window")

// ErrNotFound covers schedule records that are absent or owned by another user.
var ErrNotFound = errors.New("schedule record not found")

// ErrValidation covers malformed batch requests (empty post list, unknown
// platform override). Never retried.
var ErrValidation = errors.New("invalid schedule request")

// ScheduleRecord states. A record enters Scheduled on creation, moves to
// Posting when a queue delivery claims it, and ends in Posted or Failed.
// Terminal states are never re-entered.
const (
	StatusScheduled = "scheduled"
	StatusPosting   = "posting"
	StatusPosted    = "posted"
	StatusFailed    = "failed"
)

// RecurrenceRule is immutable once created and may be referenced by many
// schedule records.
type RecurrenceRule struct {
	ID        uuid.UUID `gorm:"primary_key;type:char(36)"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;index"`
	Kind      string    `gorm:"type:varchar(20);not null"` // daily, weekdays, weekends, custom
	Days      string    `gorm:"type:varchar(50)"`          // custom only: comma-separated sun..sat
	TimeOfDay string    `gorm:"type:varchar(5);not null"`  // HH:MM
	Timezone  string    `gorm:"type:varchar(64);not null"` // IANA name
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ScheduleRecord tracks one (post, platform) pairing through the dispatch
// pipeline. Records are an audit trail and are never deleted automatically.
type ScheduleRecord struct {
	ID                uuid.UUID  `gorm:"primary_key;type:char(36)"`
	PostID            uuid.UUID  `gorm:"type:char(36);not null;index"`
	Post              post.Post  `gorm:"foreignkey:PostID"`
	RuleID            *uuid.UUID `gorm:"type:char(36);index"`
	UserID            uuid.UUID  `gorm:"type:char(36);not null;index"`
	Platform          string     `gorm:"type:varchar(32);not null"`
	ScheduledAt       time.Time  `gorm:"not null;index"`
	Status            string     `gorm:"type:varchar(20);not null"`
	ExternalMessageID *string    `gorm:"type:varchar(128)"`
	ErrorMessage      *string    `gorm:"type:text"`
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime"`
}
