package connectionapp

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stateKey = []byte("state-signing-key")

func TestStateRoundTrip(t *testing.T) {
	issued := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	tok := stateToken{
		UserID:   "4f6c2f9e-0000-0000-0000-000000000001",
		Verifier: "verifier-value",
		IssuedAt: issued.Unix(),
		Origin:   "https://app.example.com",
	}

	raw, err := encodeState(tok, stateKey)
	require.NoError(t, err)

	got, err := decodeState(raw, stateKey, issued.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, tok, *got)
}

func TestStateRejectsTampering(t *testing.T) {
	tok := stateToken{UserID: "u", Verifier: "v", IssuedAt: time.Now().Unix(), Origin: "o"}
	raw, err := encodeState(tok, stateKey)
	require.NoError(t, err)

	// Change the body without re-signing.
	parts := strings.SplitN(raw, ".", 2)
	require.Len(t, parts, 2)
	flip := "A"
	if strings.HasSuffix(parts[0], "A") {
		flip = "B"
	}
	forged := parts[0][:len(parts[0])-1] + flip + "." + parts[1]
	_, err = decodeState(forged, stateKey, time.Now())
	assert.ErrorIs(t, err, ErrBadState)

	// Sign with a different key.
	other, err := encodeState(tok, []byte("another-key"))
	require.NoError(t, err)
	_, err = decodeState(other, stateKey, time.Now())
	assert.ErrorIs(t, err, ErrBadState)
}

func TestStateRejectsExpiry(t *testing.T) {
	issued := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	raw, err := encodeState(stateToken{UserID: "u", Verifier: "v", IssuedAt: issued.Unix()}, stateKey)
	require.NoError(t, err)

	_, err = decodeState(raw, stateKey, issued.Add(stateTTL+time.Second))
	assert.ErrorIs(t, err, ErrBadState)

	_, err = decodeState(raw, stateKey, issued.Add(stateTTL-time.Second))
	assert.NoError(t, err)
}

func TestStateRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "no-dot", "a.b", "!!!.!!!"} {
		_, err := decodeState(raw, stateKey, time.Now())
		assert.ErrorIs(t, err, ErrBadState, "state %q", raw)
	}
}

func TestVerifierAndChallenge(t *testing.T) {
	v1, err := newVerifier()
	require.NoError(t, err)
	v2, err := newVerifier()
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)
	// URL-safe, no padding.
	assert.NotContains(t, v1, "+")
	assert.NotContains(t, v1, "/")
	assert.NotContains(t, v1, "=")

	assert.Equal(t, challengeS256(v1), challengeS256(v1))
	assert.NotEqual(t, challengeS256(v1), challengeS256(v2))
}
