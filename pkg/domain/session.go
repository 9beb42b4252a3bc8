package domain

import "github.com/google/uuid"

// WorkspaceAccess is a workspace the session's user belongs to, with the
// role held there.
type WorkspaceAccess struct {
	WorkspaceID uuid.UUID
	Role        WorkspaceRole
}

// Session is the per-request snapshot of an authenticated principal. It is
// assembled by the identity layer from verified claims plus membership
// lookups, passed explicitly into every routing and authorization decision,
// and never persisted.
type Session struct {
	UserID           uuid.UUID
	Email            string
	EmailVerified    bool
	CompanyID        *uuid.UUID
	CompanyCreatedBy *uuid.UUID
	CompanyOnboarded bool
	Workspaces       []WorkspaceAccess
}

// WorkspaceRole returns the role the session holds in the given workspace,
// or false if it holds none.
func (s *Session) WorkspaceRole(workspaceID uuid.UUID) (WorkspaceRole, bool) {
	for _, w := range s.Workspaces {
		if w.WorkspaceID == workspaceID {
			return w.Role, true
		}
	}
	return "", false
}
