package post

import (
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"postpilot/internal/core/user"
)

// ErrNotFound covers both absent posts and posts owned by another user, so
// callers cannot probe for foreign post ids.
var ErrNotFound = errors.New("post not found")

const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusPosted    = "posted"
	StatusFailed    = "failed"
)

type Post struct {
	ID          uuid.UUID  `gorm:"primary_key;type:char(36)"`
	UserID      uuid.UUID  `gorm:"type:char(36);not null;index"`
	User        user.User  `gorm:"foreignkey:UserID"`
	Content     string     `gorm:"type:text;not null"`
	Platforms   string     `gorm:"type:varchar(255)"` // comma-separated platform ids
	Status      string     `gorm:"type:varchar(20);not null;default:'draft'"`
	ScheduledAt *time.Time `gorm:"index"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
	DeletedAt   *time.Time `gorm:"index"`
}

// PlatformList splits the stored platform set, dropping empty segments.
func (p *Post) PlatformList() []string {
	if p.Platforms == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(p.Platforms, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
