package scheduleapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	postEntity "postpilot/internal/core/post"
	scheduleEntity "postpilot/internal/core/schedule"
	"postpilot/internal/platforms"
	postPort "postpilot/internal/ports/post"
	queuePort "postpilot/internal/ports/queue"
	schedulePort "postpilot/internal/ports/schedule"
)

// queueRetries is the retry policy requested from the queue at registration.
const queueRetries = 3

// ScheduleService expands a recurrence rule over a batch of posts and
// registers each (post, platform) pairing with the deferred-delivery queue.
type ScheduleService struct {
	PostRepository     postPort.PostRepository
	RuleRepository     schedulePort.RuleRepository
	ScheduleRepository schedulePort.ScheduleRepository
	Queue              queuePort.DeferredQueue
	Registry           *platforms.Registry
	Logger             *zap.Logger
	now                schedulePort.Clock
}

func NewScheduleService(
	postRepo postPort.PostRepository,
	ruleRepo schedulePort.RuleRepository,
	scheduleRepo schedulePort.ScheduleRepository,
	queue queuePort.DeferredQueue,
	registry *platforms.Registry,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		PostRepository:     postRepo,
		RuleRepository:     ruleRepo,
		ScheduleRepository: scheduleRepo,
		Queue:              queue,
		Registry:           registry,
		Logger:             logger,
		now:                time.Now,
	}
}

// WithClock pins "now" for tests.
func (s *ScheduleService) WithClock(clock schedulePort.Clock) *ScheduleService {
	s.now = clock
	return s
}

// ScheduleBatch assigns rule occurrences to posts in input order. Expansion
// is all-or-nothing: nothing is written unless every post gets a timestamp.
// Queue registration after that point is best-effort per record — one
// record's failure never blocks its siblings.
func (s *ScheduleService) ScheduleBatch(
	ctx context.Context,
	userID string,
	postIDs []string,
	ruleIn schedulePort.RuleInput,
	platformsOverride []string,
) (*schedulePort.BatchResult, error) {
	if len(postIDs) == 0 {
		return nil, fmt.Errorf("%w: empty post list", scheduleEntity.ErrValidation)
	}
	uid, err := uuid.FromString(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", scheduleEntity.ErrValidation)
	}
	for _, pid := range platformsOverride {
		if _, ok := s.Registry.Get(pid); !ok {
			return nil, fmt.Errorf("%w: unknown platform %q", scheduleEntity.ErrValidation, pid)
		}
	}

	rule := &scheduleEntity.RecurrenceRule{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    uid,
		Kind:      ruleIn.Type,
		Days:      strings.Join(ruleIn.Days, ","),
		TimeOfDay: ruleIn.Time,
		Timezone:  ruleIn.Timezone,
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	// Ownership check up front; a partially authorized batch is rejected,
	// never silently narrowed.
	owned, err := s.PostRepository.FindOwnedByIDs(ctx, userID, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}
	byID := make(map[string]*postEntity.Post, len(owned))
	for _, p := range owned {
		byID[p.ID.String()] = p
	}
	var missing []string
	for _, id := range postIDs {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", postEntity.ErrNotFound, strings.Join(missing, ", "))
	}

	now := s.now()
	occurrences, err := rule.Expand(len(postIDs), now)
	if err != nil {
		return nil, err
	}
	if len(occurrences) < len(postIDs) {
		return nil, fmt.Errorf("%w: got %d of %d occurrences",
			scheduleEntity.ErrInsufficientWindow, len(occurrences), len(postIDs))
	}

	if _, err := s.RuleRepository.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to persist rule: %w", err)
	}

	result := &schedulePort.BatchResult{Success: true, RuleID: rule.ID.String()}
	for i, id := range postIDs {
		p := byID[id]
		when := occurrences[i]
		items := s.schedulePost(ctx, p, rule, when, platformsOverride, now)
		for _, item := range items {
			if !item.Success {
				result.Success = false
			}
			result.Scheduled = append(result.Scheduled, item)
		}
	}
	return result, nil
}

func (s *ScheduleService) schedulePost(
	ctx context.Context,
	p *postEntity.Post,
	rule *scheduleEntity.RecurrenceRule,
	when time.Time,
	platformsOverride []string,
	now time.Time,
) []schedulePort.ItemResult {
	targets := platformsOverride
	if len(targets) == 0 {
		targets = p.PlatformList()
	}
	if len(targets) == 0 {
		if def, ok := s.Registry.Default(); ok {
			targets = []string{def.ID()}
		}
	}
	if len(targets) == 0 {
		msg := "no target platform configured"
		return []schedulePort.ItemResult{{PostID: p.ID.String(), Success: false, Error: &msg}}
	}

	if err := s.PostRepository.SetScheduled(ctx, p.ID.String(), when); err != nil {
		s.Logger.Error("failed to mark post scheduled", zap.String("postID", p.ID.String()), zap.Error(err))
	}

	items := make([]schedulePort.ItemResult, 0, len(targets))
	for _, platform := range targets {
		items = append(items, s.registerRecord(ctx, p, rule, platform, when, now))
	}
	return items
}

// registerRecord creates one schedule record and registers it with the
// queue. A registration failure is captured on that record alone.
func (s *ScheduleService) registerRecord(
	ctx context.Context,
	p *postEntity.Post,
	rule *scheduleEntity.RecurrenceRule,
	platform string,
	when time.Time,
	now time.Time,
) schedulePort.ItemResult {
	ruleID := rule.ID
	rec := &scheduleEntity.ScheduleRecord{
		ID:          uuid.Must(uuid.NewV4()),
		PostID:      p.ID,
		RuleID:      &ruleID,
		UserID:      p.UserID,
		Platform:    platform,
		ScheduledAt: when,
		Status:      scheduleEntity.StatusScheduled,
	}
	item := schedulePort.ItemResult{PostID: p.ID.String(), Platform: platform}

	if _, err := s.ScheduleRepository.Create(ctx, rec); err != nil {
		s.Logger.Error("failed to create schedule record",
			zap.String("postID", p.ID.String()), zap.String("platform", platform), zap.Error(err))
		msg := "could not create schedule record"
		item.Error = &msg
		return item
	}

	delay := when.Sub(now)
	if delay < 0 {
		delay = 0
	}
	job := queuePort.Job{PostID: p.ID.String(), Platform: platform, ScheduleID: rec.ID.String()}
	messageID, err := s.Queue.Enqueue(ctx, job, delay, queueRetries)
	if err != nil {
		s.Logger.Error("queue registration failed",
			zap.String("scheduleID", rec.ID.String()), zap.Error(err))
		if markErr := s.ScheduleRepository.MarkRegistrationFailed(ctx, rec.ID.String(), err.Error()); markErr != nil {
			s.Logger.Error("failed to record registration failure",
				zap.String("scheduleID", rec.ID.String()), zap.Error(markErr))
		}
		msg := err.Error()
		item.Error = &msg
		return item
	}

	if err := s.ScheduleRepository.SetRegistered(ctx, rec.ID.String(), messageID); err != nil {
		s.Logger.Warn("could not store queue message id",
			zap.String("scheduleID", rec.ID.String()), zap.Error(err))
	}

	item.Success = true
	scheduledAt := when.UTC().Format(time.RFC3339)
	scheduleID := rec.ID.String()
	item.ScheduledAt = &scheduledAt
	item.ScheduleID = &scheduleID
	return item
}
