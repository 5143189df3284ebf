package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scheduleEntity "postpilot/internal/core/schedule"
	queuePort "postpilot/internal/ports/queue"
)

type stubPublishUseCase struct {
	err  error
	jobs []queuePort.Job
}

func (s *stubPublishUseCase) HandleDelivery(ctx context.Context, job queuePort.Job) error {
	s.jobs = append(s.jobs, job)
	return s.err
}

func newPublishRouter(uc *stubPublishUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctl := NewPublishController(uc, "queue-secret")
	r.POST("/publish/callback", ctl.HandleCallback)
	return r
}

func postCallback(r *gin.Engine, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/publish/callback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Queue-Token", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPublishCallbackDelivers(t *testing.T) {
	uc := &stubPublishUseCase{}
	r := newPublishRouter(uc)

	body, _ := json.Marshal(queuePort.Job{PostID: "p1", Platform: "twitter", ScheduleID: "s1"})
	w := postCallback(r, "queue-secret", body)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, uc.jobs, 1)
	assert.Equal(t, "s1", uc.jobs[0].ScheduleID)
}

func TestPublishCallbackRejectsBadToken(t *testing.T) {
	uc := &stubPublishUseCase{}
	r := newPublishRouter(uc)

	body, _ := json.Marshal(queuePort.Job{ScheduleID: "s1"})
	assert.Equal(t, http.StatusUnauthorized, postCallback(r, "wrong", body).Code)
	assert.Equal(t, http.StatusUnauthorized, postCallback(r, "", body).Code)
	assert.Empty(t, uc.jobs)
}

func TestPublishCallbackRejectsBadPayload(t *testing.T) {
	uc := &stubPublishUseCase{}
	r := newPublishRouter(uc)

	assert.Equal(t, http.StatusBadRequest, postCallback(r, "queue-secret", []byte("not json")).Code)

	// Valid JSON but no schedule id.
	body, _ := json.Marshal(queuePort.Job{PostID: "p1"})
	assert.Equal(t, http.StatusBadRequest, postCallback(r, "queue-secret", body).Code)
	assert.Empty(t, uc.jobs)
}

func TestPublishCallbackUnknownRecord(t *testing.T) {
	uc := &stubPublishUseCase{err: scheduleEntity.ErrNotFound}
	r := newPublishRouter(uc)

	body, _ := json.Marshal(queuePort.Job{ScheduleID: "missing"})
	assert.Equal(t, http.StatusNotFound, postCallback(r, "queue-secret", body).Code)
}

func TestPublishCallbackInfraErrorAsksForRetry(t *testing.T) {
	uc := &stubPublishUseCase{err: errors.New("db down")}
	r := newPublishRouter(uc)

	body, _ := json.Marshal(queuePort.Job{ScheduleID: "s1"})
	assert.Equal(t, http.StatusInternalServerError, postCallback(r, "queue-secret", body).Code)
}
