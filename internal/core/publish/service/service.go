package publishapp

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	connectionEntity "postpilot/internal/core/connection"
	notificationEntity "postpilot/internal/core/notification"
	postEntity "postpilot/internal/core/post"
	scheduleEntity "postpilot/internal/core/schedule"
	"postpilot/internal/platforms"
	connectionPort "postpilot/internal/ports/connection"
	notificationPort "postpilot/internal/ports/notification"
	postPort "postpilot/internal/ports/post"
	queuePort "postpilot/internal/ports/queue"
	schedulePort "postpilot/internal/ports/schedule"
	"postpilot/internal/vault"
)

// PublishService handles queue deliveries: claim the record, decrypt the
// credential, publish, record the terminal state. The queue delivers at
// least once, so everything here must tolerate replays.
type PublishService struct {
	ScheduleRepository     schedulePort.ScheduleRepository
	PostRepository         postPort.PostRepository
	ConnectionRepository   connectionPort.ConnectionRepository
	NotificationRepository notificationPort.NotificationRepository
	Registry               *platforms.Registry
	Vault                  *vault.Vault
	Logger                 *zap.Logger
}

func NewPublishService(
	scheduleRepo schedulePort.ScheduleRepository,
	postRepo postPort.PostRepository,
	connectionRepo connectionPort.ConnectionRepository,
	notificationRepo notificationPort.NotificationRepository,
	registry *platforms.Registry,
	v *vault.Vault,
	logger *zap.Logger,
) *PublishService {
	return &PublishService{
		ScheduleRepository:     scheduleRepo,
		PostRepository:         postRepo,
		ConnectionRepository:   connectionRepo,
		NotificationRepository: notificationRepo,
		Registry:               registry,
		Vault:                  v,
		Logger:                 logger,
	}
}

// HandleDelivery processes one queue callback. A record already in a
// terminal state (or lost to a concurrent claim) is a no-op success.
// Publish failures are absorbed into the record and a notification; only
// infrastructure errors propagate.
func (s *PublishService) HandleDelivery(ctx context.Context, job queuePort.Job) error {
	rec, err := s.ScheduleRepository.FindByID(ctx, job.ScheduleID)
	if err != nil {
		return err
	}
	if rec.Status == scheduleEntity.StatusPosted || rec.Status == scheduleEntity.StatusFailed {
		s.Logger.Info("duplicate delivery ignored",
			zap.String("scheduleID", rec.ID.String()), zap.String("status", rec.Status))
		return nil
	}

	claimed, err := s.ScheduleRepository.ClaimPosting(ctx, rec.ID.String())
	if err != nil {
		return err
	}
	if !claimed {
		s.Logger.Info("record already claimed", zap.String("scheduleID", rec.ID.String()))
		return nil
	}

	p, err := s.PostRepository.FindByID(ctx, rec.PostID.String())
	if err != nil {
		s.fail(ctx, rec, "post no longer exists", false)
		return nil
	}

	conn, err := s.ConnectionRepository.FindConnected(ctx, rec.UserID.String(), rec.Platform)
	if err != nil {
		if errors.Is(err, connectionEntity.ErrNotFound) {
			s.fail(ctx, rec, fmt.Sprintf("no connected %s account, reconnect required", rec.Platform), false)
			return nil
		}
		return err
	}

	accessToken, err := s.Vault.Decrypt(conn.AccessTokenEncrypted)
	if err != nil {
		// A credential that can no longer be decrypted behaves like a
		// rejected token: the user has to reconnect.
		s.Logger.Error("credential decrypt failed",
			zap.String("connectionID", conn.ID.String()), zap.Error(err))
		s.expireAndFail(ctx, rec, conn.ID.String(),
			fmt.Sprintf("stored %s credential is unreadable, reconnect required", rec.Platform))
		return nil
	}

	provider, ok := s.Registry.Get(rec.Platform)
	if !ok {
		s.fail(ctx, rec, fmt.Sprintf("unsupported platform %q", rec.Platform), false)
		return nil
	}

	if err := provider.Publish(ctx, accessToken, p.Content); err != nil {
		if errors.Is(err, platforms.ErrAuth) {
			s.expireAndFail(ctx, rec, conn.ID.String(),
				fmt.Sprintf("%s rejected the credential, reconnect required: %v", rec.Platform, err))
			return nil
		}
		retriable := ""
		if errors.Is(err, platforms.ErrTransient) {
			retriable = " (transient, safe to retry)"
		}
		s.fail(ctx, rec, fmt.Sprintf("publish to %s failed%s: %v", rec.Platform, retriable, err), false)
		return nil
	}

	if err := s.ScheduleRepository.CompletePosted(ctx, rec.ID.String()); err != nil {
		return err
	}
	if err := s.PostRepository.SetStatus(ctx, rec.PostID.String(), postEntity.StatusPosted); err != nil {
		s.Logger.Warn("could not update post status", zap.String("postID", rec.PostID.String()), zap.Error(err))
	}
	s.notify(ctx, rec, notificationEntity.KindPostPublished,
		fmt.Sprintf("Your post was published to %s", rec.Platform))
	s.Logger.Info("post published",
		zap.String("scheduleID", rec.ID.String()), zap.String("platform", rec.Platform))
	return nil
}

// expireAndFail handles the authentication case: the credential flips to
// Expired so the UI can prompt reconnection, on top of failing the record.
func (s *PublishService) expireAndFail(ctx context.Context, rec *scheduleEntity.ScheduleRecord, connectionID, msg string) {
	if err := s.ConnectionRepository.MarkExpired(ctx, connectionID); err != nil {
		s.Logger.Error("could not mark connection expired",
			zap.String("connectionID", connectionID), zap.Error(err))
	}
	s.fail(ctx, rec, msg, true)
}

func (s *PublishService) fail(ctx context.Context, rec *scheduleEntity.ScheduleRecord, msg string, authFailure bool) {
	if err := s.ScheduleRepository.CompleteFailed(ctx, rec.ID.String(), msg); err != nil {
		s.Logger.Error("could not mark record failed",
			zap.String("scheduleID", rec.ID.String()), zap.Error(err))
	}
	if err := s.PostRepository.SetStatus(ctx, rec.PostID.String(), postEntity.StatusFailed); err != nil {
		s.Logger.Warn("could not update post status",
			zap.String("postID", rec.PostID.String()), zap.Error(err))
	}
	s.notify(ctx, rec, notificationEntity.KindPostFailed, msg)
	s.Logger.Warn("publish failed",
		zap.String("scheduleID", rec.ID.String()),
		zap.Bool("authFailure", authFailure),
		zap.String("reason", msg))
}

func (s *PublishService) notify(ctx context.Context, rec *scheduleEntity.ScheduleRecord, kind, msg string) {
	n := &notificationEntity.Notification{
		ID:      uuid.Must(uuid.NewV4()),
		UserID:  rec.UserID,
		PostID:  rec.PostID,
		Kind:    kind,
		Message: msg,
		Status:  notificationEntity.StatusPending,
	}
	if _, err := s.NotificationRepository.Create(ctx, n); err != nil {
		s.Logger.Warn("could not create notification",
			zap.String("userID", rec.UserID.String()), zap.Error(err))
	}
}
