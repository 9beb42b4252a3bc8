package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerificationCode is a short-lived numeric code mailed to an address to
// prove ownership. Only an argon2id digest of the code is stored: the code
// space is small enough to brute-force against a fast hash.
type VerificationCode struct {
	ID         uuid.UUID
	Email      string
	CodeDigest string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time
}

// IsValid reports whether the code can still be confirmed.
func (c *VerificationCode) IsValid(now time.Time) bool {
	return c.ConsumedAt == nil && now.Before(c.ExpiresAt)
}
