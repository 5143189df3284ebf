// Package vault encrypts OAuth tokens at rest with AES-256-GCM. Stored
// envelopes are "base64(nonce):base64(ciphertext)" so the nonce travels with
// the value, plus a separate SHA-256 fingerprint for equality checks that
// must not decrypt.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// ErrDecrypt is returned for malformed envelopes, a failed AEAD open
// (tampered ciphertext or wrong key), or a bad base64 segment. Decrypt never
// returns garbage alongside a nil error.
var ErrDecrypt = errors.New("vault: decryption failed")

// Vault holds the derived AEAD. Safe for concurrent use.
type Vault struct {
	aead cipher.AEAD
}

// New derives an AES-256 key from the master secret via HKDF and returns a
// ready Vault. The purpose string isolates this key from other uses of the
// same master secret.
func New(masterSecret []byte, purpose string) (*Vault, error) {
	if len(masterSecret) == 0 {
		return nil, errors.New("vault: empty master secret")
	}
	r := hkdf.New(sha256.New, masterSecret, []byte("postpilot-credential-vault"), []byte(purpose))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("vault: key derivation failed: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	return &Vault{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce and returns the storage
// envelope.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("vault: failed to generate nonce: %w", err)
	}
	ciphertext := v.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(nonce) + ":" + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt opens an envelope previously produced by Encrypt.
func (v *Vault) Decrypt(envelope string) (string, error) {
	parts := strings.SplitN(envelope, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: missing nonce separator", ErrDecrypt)
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: bad nonce encoding", ErrDecrypt)
	}
	if len(nonce) != v.aead.NonceSize() {
		return "", fmt.Errorf("%w: bad nonce length", ErrDecrypt)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext encoding", ErrDecrypt)
	}
	plaintext, err := v.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

// Fingerprint returns a hex SHA-256 digest of the plaintext, letting callers
// compare a freshly fetched token against a stored credential without
// touching the ciphertext.
func Fingerprint(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
