// Package signing provides HMAC-SHA256 signing and verification for
// screenshot requests. The browser console (sign) and this service
// (verify) must agree on the canonical message format in package shot.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer signs and verifies canonical messages with a shared secret.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer with the given secret string. The secret is
// injected at construction so it can be rotated by rebuilding the Signer,
// and so tests can run multiple secrets side by side.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign computes the hex-encoded HMAC-SHA256 of the message.
func (s *Signer) Sign(message string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks whether signature matches the HMAC-SHA256 of message.
// Uses hmac.Equal for constant-time comparison: a length mismatch
// rejects immediately, otherwise every byte is examined regardless of
// where the first difference occurs. A malformed signature and a wrong
// signature are indistinguishable to the caller.
func (s *Signer) Verify(message, signature string) bool {
	expected := s.Sign(message)
	return hmac.Equal([]byte(expected), []byte(signature))
}
