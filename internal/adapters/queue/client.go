// Package queue registers schedule jobs with the external deferred-delivery
// service (QStash-style publish API). The service suspends the job and calls
// the publish callback at least once after the requested delay.
package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	queuePort "postpilot/internal/ports/queue"
)

// ErrRegistration marks a rejected or unreachable queue. It is scoped to a
// single schedule record; siblings in the batch proceed.
var ErrRegistration = errors.New("queue registration failed")

// defaultRetries is the retry policy requested from the queue itself; the
// publish worker runs no retry loop of its own.
const defaultRetries = 3

type Client struct {
	baseURL     string
	token       string
	callbackURL string
	retries     int
	http        *http.Client
}

// NewClient points at the queue's publish endpoint. callbackURL is this
// service's publish-callback address the queue will deliver to.
func NewClient(baseURL, token, callbackURL string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		callbackURL: callbackURL,
		retries:     defaultRetries,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

// Enqueue registers one job for delivery after delay. The returned message
// id is stored on the schedule record for the audit trail.
func (c *Client) Enqueue(ctx context.Context, job queuePort.Job, delay time.Duration, retries int) (string, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRegistration, err)
	}
	if retries <= 0 {
		retries = c.retries
	}
	delaySeconds := int64(delay / time.Second)
	if delaySeconds < 0 {
		delaySeconds = 0
	}

	endpoint := c.baseURL + "/v2/publish/" + c.callbackURL
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRegistration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Upstash-Delay", strconv.FormatInt(delaySeconds, 10)+"s")
	req.Header.Set("Upstash-Retries", strconv.Itoa(retries))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRegistration, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: queue returned %d: %s", ErrRegistration, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		MessageID string `json:"messageId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: bad queue response: %v", ErrRegistration, err)
	}
	return out.MessageID, nil
}
