package schedule

import (
	"context"
	"time"

	"postpilot/internal/core/schedule"
)

// RuleRepository persists recurrence rules. Rules are immutable once created.
type RuleRepository interface {
	Create(ctx context.Context, rule *schedule.RecurrenceRule) (*schedule.RecurrenceRule, error)
}

// ScheduleRepository is the persistence port for schedule records. The
// Claim/Complete methods are conditional updates keyed on the current status
// so replayed queue deliveries lose the race instead of double-publishing.
type ScheduleRepository interface {
	Create(ctx context.Context, rec *schedule.ScheduleRecord) (*schedule.ScheduleRecord, error)
	FindByID(ctx context.Context, id string) (*schedule.ScheduleRecord, error)
	// SetRegistered stores the queue's message id after a successful
	// registration.
	SetRegistered(ctx context.Context, id string, messageID string) error
	// MarkRegistrationFailed moves a Scheduled record straight to Failed with
	// the registration error.
	MarkRegistrationFailed(ctx context.Context, id string, errMsg string) error
	// ClaimPosting transitions Scheduled -> Posting; returns false when the
	// record was not in Scheduled (duplicate delivery or terminal state).
	ClaimPosting(ctx context.Context, id string) (bool, error)
	// CompletePosted transitions Posting -> Posted.
	CompletePosted(ctx context.Context, id string) error
	// CompleteFailed transitions Posting -> Failed with the publish error.
	CompleteFailed(ctx context.Context, id string, errMsg string) error
}

// ItemResult reports one (post, platform) outcome of a batch so callers can
// react per item rather than treating the batch as atomic.
type ItemResult struct {
	PostID      string  `json:"post_id"`
	Platform    string  `json:"platform"`
	Success     bool    `json:"success"`
	ScheduledAt *string `json:"scheduled_at,omitempty"`
	ScheduleID  *string `json:"schedule_id,omitempty"`
	Error       *string `json:"error,omitempty"`
}

// BatchResult is the response to a batch schedule request.
type BatchResult struct {
	Success   bool         `json:"success"`
	RuleID    string       `json:"rule_id"`
	Scheduled []ItemResult `json:"scheduled"`
}

// RuleInput is the recurrence rule wire shape.
type RuleInput struct {
	Type     string   `json:"type" binding:"required"`
	Days     []string `json:"days,omitempty"`
	Time     string   `json:"time" binding:"required"`
	Timezone string   `json:"timezone" binding:"required"`
}

// Clock lets tests pin "now"; production uses time.Now.
type Clock func() time.Time
