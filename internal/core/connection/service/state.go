package connectionapp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrBadState is returned for missing, tampered, or expired OAuth state
// tokens. Callbacks carrying one are rejected outright.
var ErrBadState = errors.New("invalid oauth state")

// stateTTL bounds how long an authorization round-trip may take.
const stateTTL = 10 * time.Minute

// stateToken ties a callback to the user and PKCE verifier minted at init.
// It is HMAC-signed so a callback cannot forge another user's connection.
type stateToken struct {
	UserID   string `json:"user_id"`
	Verifier string `json:"verifier"`
	IssuedAt int64  `json:"issued_at"`
	Origin   string `json:"origin"`
}

// encodeState returns base64url(json) + "." + base64url(hmac-sha256).
func encodeState(tok stateToken, key []byte) (string, error) {
	payload, err := json.Marshal(tok)
	if err != nil {
		return "", err
	}
	body := base64.RawURLEncoding.EncodeToString(payload)
	return body + "." + signState(body, key), nil
}

func decodeState(raw string, key []byte, now time.Time) (*stateToken, error) {
	parts := strings.SplitN(raw, ".", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: missing signature", ErrBadState)
	}
	if !hmac.Equal([]byte(signState(parts[0], key)), []byte(parts[1])) {
		return nil, fmt.Errorf("%w: bad signature", ErrBadState)
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: bad encoding", ErrBadState)
	}
	var tok stateToken
	if err := json.Unmarshal(payload, &tok); err != nil {
		return nil, fmt.Errorf("%w: bad payload", ErrBadState)
	}
	if now.Sub(time.Unix(tok.IssuedAt, 0)) > stateTTL {
		return nil, fmt.Errorf("%w: expired", ErrBadState)
	}
	return &tok, nil
}

func signState(body string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(body))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// newVerifier returns a URL-safe PKCE code verifier.
func newVerifier() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// challengeS256 derives the code challenge sent to the provider.
func challengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
