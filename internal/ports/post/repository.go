package post

import (
	"context"
	"time"

	"postpilot/internal/core/post"
)

// PostRepository is the persistence port for posts. The dispatch pipeline
// only reads content/platforms and writes status/scheduledAt.
type PostRepository interface {
	Create(ctx context.Context, post *post.Post) (*post.Post, error)
	FindByID(ctx context.Context, id string) (*post.Post, error)
	// FindOwnedByIDs returns the subset of ids that exist and belong to
	// userID; the caller detects the missing remainder.
	FindOwnedByIDs(ctx context.Context, userID string, ids []string) ([]*post.Post, error)
	SetScheduled(ctx context.Context, id string, scheduledAt time.Time) error
	SetStatus(ctx context.Context, id string, status string) error
}

type PostDTO struct {
	ID          string   `json:"id"`
	Content     string   `json:"content"`
	Platforms   []string `json:"platforms,omitempty"`
	Status      string   `json:"status"`
	ScheduledAt *string  `json:"scheduled_at,omitempty"`
}
