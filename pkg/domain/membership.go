package domain

import (
	"time"

	"github.com/google/uuid"
)

// Membership is a user's membership in a company, with a company role.
type Membership struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	UserID    uuid.UUID
	Role      CompanyRole
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsActive returns true if the membership has not been removed.
func (m *Membership) IsActive() bool {
	return m.DeletedAt == nil
}

// WorkspaceMembership is a user's membership in a workspace, with a
// workspace role.
type WorkspaceMembership struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
	Role        WorkspaceRole
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// IsActive returns true if the membership has not been removed.
func (m *WorkspaceMembership) IsActive() bool {
	return m.DeletedAt == nil
}
