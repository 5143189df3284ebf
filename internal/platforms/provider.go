// Package platforms maps platform ids to provider implementations so adding
// a network means registering a Provider, not editing a switch.
package platforms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrAuth marks publish/identity failures caused by a rejected or expired
// token; callers mark the stored credential expired.
var ErrAuth = errors.New("platform rejected credentials")

// ErrTransient marks network errors, timeouts, rate limits, and provider
// 5xx — retryable by the queue, distinguished in the UI from reconnect.
var ErrTransient = errors.New("transient platform error")

// Tokens is the result of an authorization-code exchange.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds, 0 when the provider sent no expiry
}

// Identity is the stable account behind an access token.
type Identity struct {
	AccountID   string
	AccountName string
}

// Provider is one social platform's OAuth and publish capability.
type Provider interface {
	ID() string
	// Scopes requested during authorization.
	Scopes() string
	// AuthorizationURL builds the browser redirect for the OAuth init step.
	AuthorizationURL(state, challenge, redirectURI string) string
	// ExchangeToken trades an authorization code (+ PKCE verifier) for tokens.
	ExchangeToken(ctx context.Context, code, verifier, redirectURI string) (*Tokens, error)
	// FetchIdentity resolves the token's account id and display name.
	FetchIdentity(ctx context.Context, accessToken string) (*Identity, error)
	// Publish posts content on the user's behalf. Errors wrap ErrAuth or
	// ErrTransient.
	Publish(ctx context.Context, accessToken, content string) error
}

// requestTimeout bounds every provider call; a timeout is transient, never
// success.
const requestTimeout = 10 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// classifyStatus maps a provider response code onto the error taxonomy.
func classifyStatus(platform string, status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s returned %d", ErrAuth, platform, status)
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%w: %s returned %d", ErrTransient, platform, status)
	default:
		return fmt.Errorf("%s returned %d", platform, status)
	}
}
