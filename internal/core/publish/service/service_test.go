package publishapp

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	connectionEntity "postpilot/internal/core/connection"
	notificationEntity "postpilot/internal/core/notification"
	postEntity "postpilot/internal/core/post"
	scheduleEntity "postpilot/internal/core/schedule"
	"postpilot/internal/platforms"
	queuePort "postpilot/internal/ports/queue"
	"postpilot/internal/vault"
)

type fakeScheduleRepo struct {
	records map[string]*scheduleEntity.ScheduleRecord
}

func (r *fakeScheduleRepo) Create(ctx context.Context, rec *scheduleEntity.ScheduleRecord) (*scheduleEntity.ScheduleRecord, error) {
	r.records[rec.ID.String()] = rec
	return rec, nil
}

func (r *fakeScheduleRepo) FindByID(ctx context.Context, id string) (*scheduleEntity.ScheduleRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, scheduleEntity.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeScheduleRepo) SetRegistered(ctx context.Context, id string, messageID string) error {
	r.records[id].ExternalMessageID = &messageID
	return nil
}

func (r *fakeScheduleRepo) MarkRegistrationFailed(ctx context.Context, id string, errMsg string) error {
	rec := r.records[id]
	rec.Status = scheduleEntity.StatusFailed
	rec.ErrorMessage = &errMsg
	return nil
}

func (r *fakeScheduleRepo) ClaimPosting(ctx context.Context, id string) (bool, error) {
	rec := r.records[id]
	if rec.Status != scheduleEntity.StatusScheduled {
		return false, nil
	}
	rec.Status = scheduleEntity.StatusPosting
	return true, nil
}

func (r *fakeScheduleRepo) CompletePosted(ctx context.Context, id string) error {
	r.records[id].Status = scheduleEntity.StatusPosted
	return nil
}

func (r *fakeScheduleRepo) CompleteFailed(ctx context.Context, id string, errMsg string) error {
	rec := r.records[id]
	rec.Status = scheduleEntity.StatusFailed
	rec.ErrorMessage = &errMsg
	return nil
}

type fakePostRepo struct {
	posts map[string]*postEntity.Post
}

func (r *fakePostRepo) Create(ctx context.Context, p *postEntity.Post) (*postEntity.Post, error) {
	r.posts[p.ID.String()] = p
	return p, nil
}

func (r *fakePostRepo) FindByID(ctx context.Context, id string) (*postEntity.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, postEntity.ErrNotFound
	}
	return p, nil
}

func (r *fakePostRepo) FindOwnedByIDs(ctx context.Context, userID string, ids []string) ([]*postEntity.Post, error) {
	return nil, nil
}

func (r *fakePostRepo) SetScheduled(ctx context.Context, id string, scheduledAt time.Time) error {
	return nil
}

func (r *fakePostRepo) SetStatus(ctx context.Context, id string, status string) error {
	if p, ok := r.posts[id]; ok {
		p.Status = status
	}
	return nil
}

type fakeConnectionRepo struct {
	rows    map[string]*connectionEntity.Connection
	expired []string
}

func (r *fakeConnectionRepo) Upsert(ctx context.Context, conn *connectionEntity.Connection) (*connectionEntity.Connection, error) {
	r.rows[conn.ID.String()] = conn
	return conn, nil
}

func (r *fakeConnectionRepo) FindConnected(ctx context.Context, userID, platform string) (*connectionEntity.Connection, error) {
	for _, c := range r.rows {
		if c.UserID.String() == userID && c.Platform == platform && c.Status == connectionEntity.StatusConnected {
			return c, nil
		}
	}
	return nil, connectionEntity.ErrNotFound
}

func (r *fakeConnectionRepo) ListByUser(ctx context.Context, userID string) ([]*connectionEntity.Connection, error) {
	return nil, nil
}

func (r *fakeConnectionRepo) MarkExpired(ctx context.Context, id string) error {
	r.expired = append(r.expired, id)
	if c, ok := r.rows[id]; ok {
		c.Status = connectionEntity.StatusExpired
	}
	return nil
}

func (r *fakeConnectionRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type fakeNotificationRepo struct {
	created []*notificationEntity.Notification
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *notificationEntity.Notification) (*notificationEntity.Notification, error) {
	r.created = append(r.created, n)
	return n, nil
}

func (r *fakeNotificationRepo) GetPending(ctx context.Context, limit int64) ([]*notificationEntity.Notification, error) {
	return nil, nil
}

func (r *fakeNotificationRepo) MarkDone(ctx context.Context, id uuid.UUID) error { return nil }

type scriptedProvider struct {
	id         string
	publishErr error
	calls      int
	gotToken   string
	gotContent string
}

func (p *scriptedProvider) ID() string     { return p.id }
func (p *scriptedProvider) Scopes() string { return "" }
func (p *scriptedProvider) AuthorizationURL(state, challenge, redirectURI string) string {
	return ""
}
func (p *scriptedProvider) ExchangeToken(ctx context.Context, code, verifier, redirectURI string) (*platforms.Tokens, error) {
	return nil, nil
}
func (p *scriptedProvider) FetchIdentity(ctx context.Context, accessToken string) (*platforms.Identity, error) {
	return nil, nil
}
func (p *scriptedProvider) Publish(ctx context.Context, accessToken, content string) error {
	p.calls++
	p.gotToken = accessToken
	p.gotContent = content
	return p.publishErr
}

type fixture struct {
	svc          *PublishService
	scheduleRepo *fakeScheduleRepo
	postRepo     *fakePostRepo
	connRepo     *fakeConnectionRepo
	notifRepo    *fakeNotificationRepo
	provider     *scriptedProvider
	vault        *vault.Vault
	job          queuePort.Job
	record       *scheduleEntity.ScheduleRecord
	conn         *connectionEntity.Connection
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	v, err := vault.New([]byte("test-master-secret-that-is-long"), "platform-credentials")
	require.NoError(t, err)

	userID := uuid.Must(uuid.NewV4())
	p := &postEntity.Post{
		ID:      uuid.Must(uuid.NewV4()),
		UserID:  userID,
		Content: "scheduled content",
		Status:  postEntity.StatusScheduled,
	}
	rec := &scheduleEntity.ScheduleRecord{
		ID:          uuid.Must(uuid.NewV4()),
		PostID:      p.ID,
		UserID:      userID,
		Platform:    "twitter",
		ScheduledAt: time.Now().Add(-time.Minute),
		Status:      scheduleEntity.StatusScheduled,
	}
	accessEnc, err := v.Encrypt("live-access-token")
	require.NoError(t, err)
	conn := &connectionEntity.Connection{
		ID:                   uuid.Must(uuid.NewV4()),
		UserID:               userID,
		Platform:             "twitter",
		AccountID:            "acct",
		AccessTokenEncrypted: accessEnc,
		AccessTokenHash:      vault.Fingerprint("live-access-token"),
		Status:               connectionEntity.StatusConnected,
	}

	scheduleRepo := &fakeScheduleRepo{records: map[string]*scheduleEntity.ScheduleRecord{rec.ID.String(): rec}}
	postRepo := &fakePostRepo{posts: map[string]*postEntity.Post{p.ID.String(): p}}
	connRepo := &fakeConnectionRepo{rows: map[string]*connectionEntity.Connection{conn.ID.String(): conn}}
	notifRepo := &fakeNotificationRepo{}
	provider := &scriptedProvider{id: "twitter"}
	registry := platforms.NewRegistry()
	registry.Register(provider)

	svc := NewPublishService(scheduleRepo, postRepo, connRepo, notifRepo, registry, v, zap.NewNop())
	return &fixture{
		svc:          svc,
		scheduleRepo: scheduleRepo,
		postRepo:     postRepo,
		connRepo:     connRepo,
		notifRepo:    notifRepo,
		provider:     provider,
		vault:        v,
		job:          queuePort.Job{PostID: p.ID.String(), Platform: "twitter", ScheduleID: rec.ID.String()},
		record:       rec,
		conn:         conn,
	}
}

func TestHandleDeliveryPublishes(t *testing.T) {
	f := newFixture(t)

	err := f.svc.HandleDelivery(context.Background(), f.job)
	require.NoError(t, err)

	assert.Equal(t, 1, f.provider.calls)
	assert.Equal(t, "live-access-token", f.provider.gotToken)
	assert.Equal(t, "scheduled content", f.provider.gotContent)
	assert.Equal(t, scheduleEntity.StatusPosted, f.record.Status)
	assert.Equal(t, postEntity.StatusPosted, f.postRepo.posts[f.job.PostID].Status)

	require.Len(t, f.notifRepo.created, 1)
	assert.Equal(t, notificationEntity.KindPostPublished, f.notifRepo.created[0].Kind)
}

func TestHandleDeliveryRedeliveryIsNoOp(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.HandleDelivery(context.Background(), f.job))
	require.Equal(t, 1, f.provider.calls)

	// Same job again: the platform call must not repeat.
	require.NoError(t, f.svc.HandleDelivery(context.Background(), f.job))
	assert.Equal(t, 1, f.provider.calls)
	assert.Equal(t, scheduleEntity.StatusPosted, f.record.Status)
	assert.Len(t, f.notifRepo.created, 1)
}

func TestHandleDeliveryAuthFailureExpiresCredential(t *testing.T) {
	f := newFixture(t)
	f.provider.publishErr = fmt.Errorf("%w: twitter returned 401", platforms.ErrAuth)

	err := f.svc.HandleDelivery(context.Background(), f.job)
	require.NoError(t, err)

	assert.Equal(t, scheduleEntity.StatusFailed, f.record.Status)
	require.NotNil(t, f.record.ErrorMessage)
	assert.Contains(t, *f.record.ErrorMessage, "reconnect")
	assert.Equal(t, connectionEntity.StatusExpired, f.conn.Status)
	assert.Contains(t, f.connRepo.expired, f.conn.ID.String())

	require.Len(t, f.notifRepo.created, 1)
	assert.Equal(t, notificationEntity.KindPostFailed, f.notifRepo.created[0].Kind)
}

func TestHandleDeliveryTransientFailureKeepsCredential(t *testing.T) {
	f := newFixture(t)
	f.provider.publishErr = fmt.Errorf("%w: twitter returned 503", platforms.ErrTransient)

	err := f.svc.HandleDelivery(context.Background(), f.job)
	require.NoError(t, err)

	assert.Equal(t, scheduleEntity.StatusFailed, f.record.Status)
	require.NotNil(t, f.record.ErrorMessage)
	assert.Contains(t, *f.record.ErrorMessage, "transient")
	// Credential stays connected; the UI offers retry, not reconnect.
	assert.Equal(t, connectionEntity.StatusConnected, f.conn.Status)
	assert.Empty(t, f.connRepo.expired)
}

func TestHandleDeliveryUnreadableCredential(t *testing.T) {
	f := newFixture(t)
	f.conn.AccessTokenEncrypted = "QQ==:Z2FyYmFnZQ=="

	err := f.svc.HandleDelivery(context.Background(), f.job)
	require.NoError(t, err)

	assert.Equal(t, 0, f.provider.calls)
	assert.Equal(t, scheduleEntity.StatusFailed, f.record.Status)
	assert.Equal(t, connectionEntity.StatusExpired, f.conn.Status)
}

func TestHandleDeliveryNoConnectedAccount(t *testing.T) {
	f := newFixture(t)
	f.conn.Status = connectionEntity.StatusExpired

	err := f.svc.HandleDelivery(context.Background(), f.job)
	require.NoError(t, err)

	assert.Equal(t, 0, f.provider.calls)
	assert.Equal(t, scheduleEntity.StatusFailed, f.record.Status)
	require.NotNil(t, f.record.ErrorMessage)
	assert.Contains(t, *f.record.ErrorMessage, "reconnect")
}

func TestHandleDeliveryUnknownRecord(t *testing.T) {
	f := newFixture(t)
	f.job.ScheduleID = uuid.Must(uuid.NewV4()).String()

	err := f.svc.HandleDelivery(context.Background(), f.job)
	assert.ErrorIs(t, err, scheduleEntity.ErrNotFound)
	assert.Equal(t, 0, f.provider.calls)
}
