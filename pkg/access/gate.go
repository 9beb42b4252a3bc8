package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/pkg/domain"
)

// Action names something a principal wants to do against a scope.
type Action string

const (
	// Company-scoped actions
	ActionCompanyView       Action = "company.view"
	ActionManageMembers     Action = "company.manage_members"
	ActionManageInvites     Action = "company.manage_invites"
	ActionManageBilling     Action = "company.manage_billing"
	ActionTransferOwnership Action = "company.transfer_ownership"

	// Workspace-scoped actions
	ActionWorkspaceView   Action = "workspace.view"
	ActionWorkspaceEdit   Action = "workspace.edit"
	ActionWorkspaceManage Action = "workspace.manage"
)

// Minimum role per action. Absence from both tables means the action is
// unknown and always denied.
var (
	companyActionFloor = map[Action]domain.CompanyRole{
		ActionCompanyView:       domain.CompanyRoleMember,
		ActionManageMembers:     domain.CompanyRoleAdmin,
		ActionManageInvites:     domain.CompanyRoleAdmin,
		ActionManageBilling:     domain.CompanyRoleBilling,
		ActionTransferOwnership: domain.CompanyRoleOwner,
	}
	workspaceActionFloor = map[Action]domain.WorkspaceRole{
		ActionWorkspaceView:   domain.WorkspaceRoleReader,
		ActionWorkspaceEdit:   domain.WorkspaceRoleWriter,
		ActionWorkspaceManage: domain.WorkspaceRoleAdmin,
	}
)

// ScopeKind distinguishes the two tenant boundaries.
type ScopeKind string

const (
	ScopeCompany   ScopeKind = "company"
	ScopeWorkspace ScopeKind = "workspace"
)

// Scope is the tenant boundary an action is evaluated against.
type Scope struct {
	Kind ScopeKind
	ID   uuid.UUID
}

// CompanyScope builds a company scope.
func CompanyScope(id uuid.UUID) Scope { return Scope{Kind: ScopeCompany, ID: id} }

// WorkspaceScope builds a workspace scope.
func WorkspaceScope(id uuid.UUID) Scope { return Scope{Kind: ScopeWorkspace, ID: id} }

// DenyReason says why a decision denied.
type DenyReason string

const (
	ReasonNotReady              DenyReason = "not_ready"
	ReasonInsufficientPrivilege DenyReason = "insufficient_privilege"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allowed() Decision            { return Decision{Allowed: true} }
func denied(r DenyReason) Decision { return Decision{Reason: r} }

// RoleFinder resolves the role a user holds in a scope. The second return
// is false when the user has no active membership there.
type RoleFinder interface {
	FindCompanyRole(ctx context.Context, userID, companyID uuid.UUID) (domain.CompanyRole, bool, error)
	FindWorkspaceRole(ctx context.Context, userID, workspaceID uuid.UUID) (domain.WorkspaceRole, bool, error)
}

// Gate is the single authorization chokepoint. Every mutating entry point
// asks it before acting.
type Gate struct {
	roles RoleFinder
}

// NewGate creates a gate over the given role resolver.
func NewGate(roles RoleFinder) *Gate {
	return &Gate{roles: roles}
}

// Authorize answers whether the session may perform action in scope. A
// session that does not route to Ready is denied outright; role lookups
// only happen for coherent, fully onboarded sessions.
func (g *Gate) Authorize(ctx context.Context, s *domain.Session, action Action, scope Scope) (Decision, error) {
	if out := Route(s, ""); out.State != StateReady {
		return denied(ReasonNotReady), nil
	}

	switch scope.Kind {
	case ScopeCompany:
		floor, ok := companyActionFloor[action]
		if !ok {
			return denied(ReasonInsufficientPrivilege), nil
		}
		role, found, err := g.roles.FindCompanyRole(ctx, s.UserID, scope.ID)
		if err != nil {
			if errors.Is(err, domain.ErrMembershipNotFound) {
				return denied(ReasonInsufficientPrivilege), nil
			}
			return Decision{}, fmt.Errorf("resolve company role: %w", err)
		}
		if !found || role.Level() < floor.Level() {
			return denied(ReasonInsufficientPrivilege), nil
		}
		return allowed(), nil

	case ScopeWorkspace:
		floor, ok := workspaceActionFloor[action]
		if !ok {
			return denied(ReasonInsufficientPrivilege), nil
		}
		role, found, err := g.roles.FindWorkspaceRole(ctx, s.UserID, scope.ID)
		if err != nil {
			if errors.Is(err, domain.ErrMembershipNotFound) {
				return denied(ReasonInsufficientPrivilege), nil
			}
			return Decision{}, fmt.Errorf("resolve workspace role: %w", err)
		}
		if !found || role.Level() < floor.Level() {
			return denied(ReasonInsufficientPrivilege), nil
		}
		return allowed(), nil

	default:
		return denied(ReasonInsufficientPrivilege), nil
	}
}
