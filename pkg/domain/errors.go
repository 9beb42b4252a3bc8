package domain

import "errors"

// Invitation errors
var (
	ErrInviteNotFound        = errors.New("invitation not found")
	ErrInviteExpired         = errors.New("invitation expired")
	ErrInviteAlreadyRedeemed = errors.New("invitation already redeemed")
)

// Authorization errors
var (
	ErrInsufficientPrivilege = errors.New("insufficient privilege")
	ErrInvalidRoleUpgrade    = errors.New("invited role exceeds inviter's own role")
	ErrNotReady              = errors.New("session is not ready for this scope")
)

// Token errors
var (
	ErrEntropyUnavailable = errors.New("secure randomness source unavailable")
)

// Slug errors
var (
	ErrSlugAllocationExhausted = errors.New("slug allocation exhausted retry budget")
)

// Verification code errors
var (
	ErrCodeInvalid  = errors.New("verification code invalid")
	ErrCodeExpired  = errors.New("verification code expired")
	ErrCodeConsumed = errors.New("verification code already used")
)

// Lookup errors
var (
	ErrCompanyNotFound    = errors.New("company not found")
	ErrWorkspaceNotFound  = errors.New("workspace not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrMembershipNotFound = errors.New("membership not found")
)
