package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// InvitationStatus is the derived lifecycle state of an invitation. It is
// computed from stored fields and the current time, never stored itself.
type InvitationStatus string

const (
	InvitationStatusActive     InvitationStatus = "active"
	InvitationStatusRedeemed   InvitationStatus = "redeemed"
	InvitationStatusSuperseded InvitationStatus = "superseded"
	InvitationStatusRevoked    InvitationStatus = "revoked"
	InvitationStatusExpired    InvitationStatus = "expired"
)

// Invitation represents a single-use invitation into a company, optionally
// scoped to one workspace. Only the one-way digest of the invite token is
// stored; the raw token is handed to the caller once at creation.
type Invitation struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	WorkspaceID  *uuid.UUID
	Email        string
	InvitedRole  string
	TokenDigest  string
	InvitedBy    uuid.UUID
	CreatedAt    time.Time
	ExpiresAt    time.Time
	RedeemedAt   *time.Time
	RedeemedBy   *uuid.UUID
	SupersededAt *time.Time
	RevokedAt    *time.Time
}

// Status derives the lifecycle state at the given instant. Terminal marks
// take precedence over expiry so a redeemed-then-expired invite reports
// Redeemed, not Expired.
func (i *Invitation) Status(now time.Time) InvitationStatus {
	switch {
	case i.RedeemedAt != nil:
		return InvitationStatusRedeemed
	case i.SupersededAt != nil:
		return InvitationStatusSuperseded
	case i.RevokedAt != nil:
		return InvitationStatusRevoked
	case !now.Before(i.ExpiresAt):
		return InvitationStatusExpired
	default:
		return InvitationStatusActive
	}
}

// IsWorkspaceInvite reports whether the invitation grants a workspace role
// rather than a company role.
func (i *Invitation) IsWorkspaceInvite() bool {
	return i.WorkspaceID != nil
}

// CompanyRole returns the invited company role for a company-level invite.
func (i *Invitation) CompanyRole() CompanyRole {
	return CompanyRole(i.InvitedRole)
}

// WorkspaceRole returns the invited workspace role for a workspace-level
// invite.
func (i *Invitation) WorkspaceRole() WorkspaceRole {
	return WorkspaceRole(i.InvitedRole)
}

// NormalizeEmail lowercases and trims an email address. Applied before any
// invitation storage or comparison so the active-invitation key is stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
