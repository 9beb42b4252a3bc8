// Package invite implements the invitation lifecycle: creation with
// supersession, single-use redemption, and revocation. Raw invite tokens
// exist only in transit; storage sees digests.
package invite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/pkg/access"
	"github.com/launchdeck/launchdeck/pkg/domain"
	"github.com/launchdeck/launchdeck/pkg/repository"
	"github.com/launchdeck/launchdeck/pkg/token"
)

const (
	// DefaultTTL is how long an invitation stays redeemable unless the
	// caller asks otherwise.
	DefaultTTL = 7 * 24 * time.Hour

	inviteTokenBytes = 32
)

// Service manages the invitation lifecycle. Create and Revoke go through
// the gate before touching any state; Redeem is authorized by possession
// of the token itself.
type Service struct {
	db          *sql.DB
	gate        *access.Gate
	companies   *repository.CompaniesRepository
	invitations *repository.InvitationsRepository
	memberships *repository.MembershipsRepository
}

// NewService creates a new invitation service.
func NewService(
	db *sql.DB,
	gate *access.Gate,
	companies *repository.CompaniesRepository,
	invitations *repository.InvitationsRepository,
	memberships *repository.MembershipsRepository,
) *Service {
	return &Service{
		db:          db,
		gate:        gate,
		companies:   companies,
		invitations: invitations,
		memberships: memberships,
	}
}

// CreateInput describes the invitation to create. WorkspaceID nil means a
// company-level invite and Role names a company role; otherwise Role names
// a workspace role.
type CreateInput struct {
	CompanyID   uuid.UUID
	WorkspaceID *uuid.UUID
	Email       string
	Role        string
	TTL         time.Duration
}

// Create issues a new invitation, superseding any active invitation for
// the same (company, workspace?, email) key in the same transaction. It
// returns the raw token exactly once; only the digest is stored.
//
// The inviter must clear the gate for company.manage_invites, which also
// denies sessions that do not route to Ready. A company-level grant is
// additionally capped at the inviter's own level: an admin cannot hand
// out owner. A workspace invite must target a workspace of the company
// being invited into.
func (s *Service) Create(ctx context.Context, inviter *domain.Session, in CreateInput) (string, *domain.Invitation, error) {
	decision, err := s.gate.Authorize(ctx, inviter, access.ActionManageInvites, access.CompanyScope(in.CompanyID))
	if err != nil {
		return "", nil, fmt.Errorf("authorize create: %w", err)
	}
	if !decision.Allowed {
		return "", nil, denyError(decision)
	}

	if in.WorkspaceID == nil {
		role := domain.CompanyRole(in.Role)
		if !role.Valid() {
			return "", nil, domain.ErrInvalidRoleUpgrade
		}
		inviterRole, found, err := s.memberships.FindCompanyRole(ctx, inviter.UserID, in.CompanyID)
		if err != nil {
			return "", nil, fmt.Errorf("resolve inviter role: %w", err)
		}
		if !found {
			return "", nil, domain.ErrInsufficientPrivilege
		}
		if role.Level() > inviterRole.Level() {
			return "", nil, domain.ErrInvalidRoleUpgrade
		}
	} else {
		if !domain.WorkspaceRole(in.Role).Valid() {
			return "", nil, domain.ErrInvalidRoleUpgrade
		}
		ws, err := s.companies.GetWorkspace(ctx, *in.WorkspaceID)
		if err != nil {
			return "", nil, err
		}
		if ws.CompanyID != in.CompanyID {
			// A workspace of another company is indistinguishable from a
			// workspace that does not exist.
			return "", nil, domain.ErrWorkspaceNotFound
		}
	}

	rawToken, err := token.Generate(inviteTokenBytes)
	if err != nil {
		return "", nil, err
	}

	ttl := in.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	inv := &domain.Invitation{
		ID:          uuid.New(),
		CompanyID:   in.CompanyID,
		WorkspaceID: in.WorkspaceID,
		Email:       domain.NormalizeEmail(in.Email),
		InvitedRole: in.Role,
		TokenDigest: token.Hash(rawToken),
		InvitedBy:   inviter.UserID,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}

	err = repository.Tx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.invitations.SupersedeActiveTx(ctx, tx, inv.CompanyID, inv.WorkspaceID, inv.Email); err != nil {
			return fmt.Errorf("supersede active invitations: %w", err)
		}
		if err := s.invitations.CreateTx(ctx, tx, inv); err != nil {
			return fmt.Errorf("create invitation: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	return rawToken, inv, nil
}

// RedeemResult reports what redemption did. RoleChanged is false when the
// redeemer already held an equal or higher role in the target scope; the
// invite is consumed either way.
type RedeemResult struct {
	Invitation  *domain.Invitation
	RoleChanged bool
}

// Redeem consumes an invitation by raw token and grants the invited role
// to the redeemer. The consume and the grant run in one transaction, with
// a compare-and-set on the still-active predicate so two concurrent
// redemptions of the same token cannot both succeed.
//
// Privilege is never downgraded by redemption: if the redeemer already
// holds a role in the target scope, the grant applies only when the
// invited role is a strict upgrade.
func (s *Service) Redeem(ctx context.Context, rawToken string, redeemerID uuid.UUID) (*RedeemResult, error) {
	digest := token.Hash(rawToken)

	var result *RedeemResult
	err := repository.Tx(ctx, s.db, func(tx *sql.Tx) error {
		inv, err := s.invitations.GetByTokenDigestTx(ctx, tx, digest)
		if err != nil {
			return err
		}

		switch inv.Status(time.Now()) {
		case domain.InvitationStatusActive:
			// proceed
		case domain.InvitationStatusRedeemed:
			return domain.ErrInviteAlreadyRedeemed
		case domain.InvitationStatusExpired:
			return domain.ErrInviteExpired
		default:
			// Superseded and revoked invites are terminal; callers learn
			// nothing beyond "no such invite".
			return domain.ErrInviteNotFound
		}

		ok, err := s.invitations.MarkRedeemedTx(ctx, tx, inv.ID, redeemerID)
		if err != nil {
			return fmt.Errorf("mark redeemed: %w", err)
		}
		if !ok {
			// The row changed between the locked read and the update.
			return domain.ErrInviteAlreadyRedeemed
		}

		changed, err := s.grantRoleTx(ctx, tx, inv, redeemerID)
		if err != nil {
			return err
		}

		now := time.Now()
		inv.RedeemedAt = &now
		inv.RedeemedBy = &redeemerID
		result = &RedeemResult{Invitation: inv, RoleChanged: changed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) grantRoleTx(ctx context.Context, tx *sql.Tx, inv *domain.Invitation, redeemerID uuid.UUID) (bool, error) {
	if inv.IsWorkspaceInvite() {
		existing, found, err := s.memberships.GetWorkspaceRoleForUpdateTx(ctx, tx, redeemerID, *inv.WorkspaceID)
		if err != nil {
			return false, fmt.Errorf("read workspace role: %w", err)
		}
		if !found {
			m := repository.NewWorkspaceMembership(*inv.WorkspaceID, redeemerID, inv.WorkspaceRole())
			if err := s.memberships.CreateWorkspaceMembershipTx(ctx, tx, m); err != nil {
				return false, fmt.Errorf("create workspace membership: %w", err)
			}
			return true, nil
		}
		if !domain.IsWorkspaceUpgrade(existing, inv.WorkspaceRole()) {
			return false, nil
		}
		if err := s.memberships.UpdateWorkspaceRoleTx(ctx, tx, redeemerID, *inv.WorkspaceID, inv.WorkspaceRole()); err != nil {
			return false, fmt.Errorf("upgrade workspace role: %w", err)
		}
		return true, nil
	}

	existing, found, err := s.memberships.GetCompanyRoleForUpdateTx(ctx, tx, redeemerID, inv.CompanyID)
	if err != nil {
		return false, fmt.Errorf("read company role: %w", err)
	}
	if !found {
		m := repository.NewCompanyMembership(inv.CompanyID, redeemerID, inv.CompanyRole())
		if err := s.memberships.CreateCompanyMembershipTx(ctx, tx, m); err != nil {
			return false, fmt.Errorf("create company membership: %w", err)
		}
		return true, nil
	}
	if !domain.IsCompanyUpgrade(existing, inv.CompanyRole()) {
		return false, nil
	}
	if err := s.memberships.UpdateCompanyRoleTx(ctx, tx, redeemerID, inv.CompanyID, inv.CompanyRole()); err != nil {
		return false, fmt.Errorf("upgrade company role: %w", err)
	}
	return true, nil
}

// Revoke marks an invitation revoked. The gate runs before the invitation
// is even looked up, so an unprivileged caller learns nothing about which
// invitation IDs exist; an invitation of another company reads as not
// found for the same reason. Revoking an invite that is already in a
// terminal state is not an error; the false return tells the caller it
// was a no-op.
func (s *Service) Revoke(ctx context.Context, revoker *domain.Session, invitationID uuid.UUID) (bool, error) {
	var companyID uuid.UUID
	if revoker.CompanyID != nil {
		companyID = *revoker.CompanyID
	}

	decision, err := s.gate.Authorize(ctx, revoker, access.ActionManageInvites, access.CompanyScope(companyID))
	if err != nil {
		return false, fmt.Errorf("authorize revoke: %w", err)
	}
	if !decision.Allowed {
		return false, denyError(decision)
	}

	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return false, err
	}
	if inv.CompanyID != companyID {
		return false, domain.ErrInviteNotFound
	}

	return s.invitations.MarkRevoked(ctx, inv.ID)
}

func denyError(d access.Decision) error {
	if d.Reason == access.ReasonNotReady {
		return domain.ErrNotReady
	}
	return domain.ErrInsufficientPrivilege
}
