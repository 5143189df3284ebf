package queue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	queuePort "postpilot/internal/ports/queue"
)

func TestEnqueue(t *testing.T) {
	var gotPath, gotAuth, gotDelay, gotRetries string
	var gotJob queuePort.Job
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotDelay = r.Header.Get("Upstash-Delay")
		gotRetries = r.Header.Get("Upstash-Retries")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotJob))
		json.NewEncoder(w).Encode(map[string]string{"messageId": "msg-42"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "queue-token", "https://api.example.com/publish/callback")
	job := queuePort.Job{PostID: "p1", Platform: "twitter", ScheduleID: "s1"}

	id, err := c.Enqueue(context.Background(), job, 90*time.Second, 5)
	require.NoError(t, err)
	assert.Equal(t, "msg-42", id)

	assert.Equal(t, "/v2/publish/https://api.example.com/publish/callback", gotPath)
	assert.Equal(t, "Bearer queue-token", gotAuth)
	assert.Equal(t, "90s", gotDelay)
	assert.Equal(t, "5", gotRetries)
	assert.Equal(t, job, gotJob)
}

func TestEnqueueDefaults(t *testing.T) {
	var gotDelay, gotRetries string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDelay = r.Header.Get("Upstash-Delay")
		gotRetries = r.Header.Get("Upstash-Retries")
		json.NewEncoder(w).Encode(map[string]string{"messageId": "msg-1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "tok", "https://cb")

	// Negative delay clamps to immediate, non-positive retries fall back to
	// the client default.
	_, err := c.Enqueue(context.Background(), queuePort.Job{}, -time.Minute, 0)
	require.NoError(t, err)
	assert.Equal(t, "0s", gotDelay)
	assert.Equal(t, "3", gotRetries)
}

func TestEnqueueRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("quota exceeded"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", "https://cb")
	_, err := c.Enqueue(context.Background(), queuePort.Job{}, time.Second, 3)
	require.ErrorIs(t, err, ErrRegistration)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestEnqueueUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, "tok", "https://cb")
	_, err := c.Enqueue(context.Background(), queuePort.Job{}, time.Second, 3)
	assert.ErrorIs(t, err, ErrRegistration)
}

func TestEnqueueBadResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", "https://cb")
	_, err := c.Enqueue(context.Background(), queuePort.Job{}, time.Second, 3)
	assert.ErrorIs(t, err, ErrRegistration)
}
