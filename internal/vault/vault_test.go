package vault

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	v, err := New([]byte("test-master-secret-that-is-long-enough"), "platform-credentials")
	require.NoError(t, err)
	return v
}

func TestRoundTrip(t *testing.T) {
	v := newTestVault(t)

	for _, plaintext := range []string{
		"",
		"a",
		"ya29.A0ARrdaM-example-access-token",
		strings.Repeat("x", 4096),
	} {
		envelope, err := v.Encrypt(plaintext)
		require.NoError(t, err)
		assert.Contains(t, envelope, ":")

		got, err := v.Decrypt(envelope)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestDecryptTamperedCiphertextFails(t *testing.T) {
	v := newTestVault(t)

	envelope, err := v.Encrypt("secret-token")
	require.NoError(t, err)

	parts := strings.SplitN(envelope, ":", 2)
	require.Len(t, parts, 2)

	// Flip a character inside the ciphertext segment.
	cipher := []byte(parts[1])
	if cipher[0] == 'A' {
		cipher[0] = 'B'
	} else {
		cipher[0] = 'A'
	}
	_, err = v.Decrypt(parts[0] + ":" + string(cipher))
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDecryptWrongKeyFails(t *testing.T) {
	v := newTestVault(t)
	other, err := New([]byte("a-completely-different-master-secret"), "platform-credentials")
	require.NoError(t, err)

	envelope, err := v.Encrypt("secret-token")
	require.NoError(t, err)

	_, err = other.Decrypt(envelope)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDecryptMalformedEnvelopeFails(t *testing.T) {
	v := newTestVault(t)

	for _, envelope := range []string{
		"",
		"no-separator",
		"!!!:AAAA",
		"AAAA:!!!",
		"QQ==:QQ==", // nonce too short
	} {
		_, err := v.Decrypt(envelope)
		assert.ErrorIs(t, err, ErrDecrypt, "envelope %q", envelope)
	}
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	v := newTestVault(t)

	first, err := v.Encrypt("same-input")
	require.NoError(t, err)
	second, err := v.Encrypt("same-input")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestDifferentPurposesIsolateKeys(t *testing.T) {
	secret := []byte("test-master-secret-that-is-long-enough")
	a, err := New(secret, "purpose-a")
	require.NoError(t, err)
	b, err := New(secret, "purpose-b")
	require.NoError(t, err)

	envelope, err := a.Encrypt("secret-token")
	require.NoError(t, err)
	_, err = b.Decrypt(envelope)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint("token-a"), Fingerprint("token-a"))
	assert.NotEqual(t, Fingerprint("token-a"), Fingerprint("token-b"))
	assert.Len(t, Fingerprint("token-a"), 64)
}
