package access

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/pkg/domain"
)

type fakeRoleFinder struct {
	companyRoles   map[uuid.UUID]domain.CompanyRole
	workspaceRoles map[uuid.UUID]domain.WorkspaceRole
	err            error
}

func (f *fakeRoleFinder) FindCompanyRole(_ context.Context, _, companyID uuid.UUID) (domain.CompanyRole, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	role, ok := f.companyRoles[companyID]
	return role, ok, nil
}

func (f *fakeRoleFinder) FindWorkspaceRole(_ context.Context, _, workspaceID uuid.UUID) (domain.WorkspaceRole, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	role, ok := f.workspaceRoles[workspaceID]
	return role, ok, nil
}

func TestAuthorizeNotReady(t *testing.T) {
	gate := NewGate(&fakeRoleFinder{})
	s := readySession()
	s.EmailVerified = false

	dec, err := gate.Authorize(context.Background(), s, ActionCompanyView, CompanyScope(*s.CompanyID))
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if dec.Allowed {
		t.Fatal("Authorize() allowed a not-ready session")
	}
	if dec.Reason != ReasonNotReady {
		t.Errorf("Reason = %q, want %q", dec.Reason, ReasonNotReady)
	}
}

func TestAuthorizeCompanyRoleFloor(t *testing.T) {
	s := readySession()
	scope := CompanyScope(*s.CompanyID)

	tests := []struct {
		name   string
		role   domain.CompanyRole
		action Action
		want   bool
	}{
		{"member denied invites", domain.CompanyRoleMember, ActionManageInvites, false},
		{"billing denied invites", domain.CompanyRoleBilling, ActionManageInvites, false},
		{"admin allowed invites", domain.CompanyRoleAdmin, ActionManageInvites, true},
		{"owner allowed invites", domain.CompanyRoleOwner, ActionManageInvites, true},
		{"member allowed view", domain.CompanyRoleMember, ActionCompanyView, true},
		{"billing allowed billing", domain.CompanyRoleBilling, ActionManageBilling, true},
		{"admin denied ownership transfer", domain.CompanyRoleAdmin, ActionTransferOwnership, false},
		{"owner allowed ownership transfer", domain.CompanyRoleOwner, ActionTransferOwnership, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(&fakeRoleFinder{
				companyRoles: map[uuid.UUID]domain.CompanyRole{scope.ID: tt.role},
			})
			dec, err := gate.Authorize(context.Background(), s, tt.action, scope)
			if err != nil {
				t.Fatalf("Authorize() error = %v", err)
			}
			if dec.Allowed != tt.want {
				t.Errorf("Allowed = %v, want %v", dec.Allowed, tt.want)
			}
			if !tt.want && dec.Reason != ReasonInsufficientPrivilege {
				t.Errorf("Reason = %q, want %q", dec.Reason, ReasonInsufficientPrivilege)
			}
		})
	}
}

func TestAuthorizeWorkspaceRoleFloor(t *testing.T) {
	s := readySession()
	wsID := uuid.New()
	scope := WorkspaceScope(wsID)

	tests := []struct {
		name   string
		role   domain.WorkspaceRole
		action Action
		want   bool
	}{
		{"reader allowed view", domain.WorkspaceRoleReader, ActionWorkspaceView, true},
		{"reader denied edit", domain.WorkspaceRoleReader, ActionWorkspaceEdit, false},
		{"writer allowed edit", domain.WorkspaceRoleWriter, ActionWorkspaceEdit, true},
		{"writer denied manage", domain.WorkspaceRoleWriter, ActionWorkspaceManage, false},
		{"admin allowed manage", domain.WorkspaceRoleAdmin, ActionWorkspaceManage, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(&fakeRoleFinder{
				workspaceRoles: map[uuid.UUID]domain.WorkspaceRole{wsID: tt.role},
			})
			dec, err := gate.Authorize(context.Background(), s, tt.action, scope)
			if err != nil {
				t.Fatalf("Authorize() error = %v", err)
			}
			if dec.Allowed != tt.want {
				t.Errorf("Allowed = %v, want %v", dec.Allowed, tt.want)
			}
		})
	}
}

func TestAuthorizeNoMembership(t *testing.T) {
	s := readySession()
	gate := NewGate(&fakeRoleFinder{})

	dec, err := gate.Authorize(context.Background(), s, ActionCompanyView, CompanyScope(uuid.New()))
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if dec.Allowed {
		t.Fatal("Authorize() allowed a user with no membership")
	}
}

func TestAuthorizeMembershipNotFoundError(t *testing.T) {
	s := readySession()
	gate := NewGate(&fakeRoleFinder{err: domain.ErrMembershipNotFound})

	dec, err := gate.Authorize(context.Background(), s, ActionCompanyView, CompanyScope(*s.CompanyID))
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if dec.Allowed || dec.Reason != ReasonInsufficientPrivilege {
		t.Errorf("decision = %+v, want denied insufficient_privilege", dec)
	}
}

func TestAuthorizeStorageErrorSurfaces(t *testing.T) {
	s := readySession()
	wantErr := errors.New("store down")
	gate := NewGate(&fakeRoleFinder{err: wantErr})

	_, err := gate.Authorize(context.Background(), s, ActionCompanyView, CompanyScope(*s.CompanyID))
	if !errors.Is(err, wantErr) {
		t.Errorf("Authorize() error = %v, want %v", err, wantErr)
	}
}

func TestAuthorizeUnknownAction(t *testing.T) {
	s := readySession()
	gate := NewGate(&fakeRoleFinder{
		companyRoles: map[uuid.UUID]domain.CompanyRole{*s.CompanyID: domain.CompanyRoleOwner},
	})

	dec, err := gate.Authorize(context.Background(), s, Action("company.delete_everything"), CompanyScope(*s.CompanyID))
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if dec.Allowed {
		t.Fatal("unknown action was allowed")
	}
}
