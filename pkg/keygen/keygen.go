package keygen

import (
	"crypto/rand"
	"encoding/base64"
)

// resetTokenBytes is the entropy of a password reset token. 32 bytes
// encode to a 43 character URL-safe string.
const resetTokenBytes = 32

// GenerateResetToken generates an opaque single-use password reset token
func GenerateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
