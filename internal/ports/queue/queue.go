package queue

import (
	"context"
	"time"
)

// Job is the payload registered with the deferred-delivery queue; the queue
// sends the same payload back to the publish callback at delivery time.
type Job struct {
	PostID     string `json:"post_id"`
	Platform   string `json:"platform"`
	ScheduleID string `json:"schedule_id"`
}

// DeferredQueue is the outbound port to the external queue service. Enqueue
// registers a job for delivery after delay with the requested retry count
// and returns the queue's message id. Failures are scoped to one record;
// the queue owns the actual suspension until publish time.
type DeferredQueue interface {
	Enqueue(ctx context.Context, job Job, delay time.Duration, retries int) (string, error)
}
