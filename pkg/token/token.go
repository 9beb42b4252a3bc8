// Package token generates and digests the opaque secrets used by
// invitations and verification codes.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/launchdeck/launchdeck/pkg/domain"
)

// MinTokenBytes is the smallest entropy allowed for an opaque token.
const MinTokenBytes = 16

// Generate returns a URL-safe token with byteLength bytes of entropy from
// the system CSPRNG. There is no fallback source: if the CSPRNG fails the
// error wraps domain.ErrEntropyUnavailable and the caller must abort.
func Generate(byteLength int) (string, error) {
	if byteLength < MinTokenBytes {
		byteLength = MinTokenBytes
	}
	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEntropyUnavailable, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Hash returns the hex-encoded SHA-256 digest of a raw token. Only digests
// are persisted; a leaked database row never yields a usable token.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// DigestEqual compares two digests in constant time.
func DigestEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// GenerateNumericCode returns a zero-padded numeric code with the given
// number of digits, sampled uniformly from [0, 10^digits). crypto/rand.Int
// rejects out-of-range samples, so there is no modulo bias.
func GenerateNumericCode(digits int) (string, error) {
	if digits <= 0 {
		digits = 6
	}
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEntropyUnavailable, err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
