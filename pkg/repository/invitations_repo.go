package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/pkg/domain"
)

// InvitationsRepository handles invitation persistence.
type InvitationsRepository struct {
	db *sql.DB
}

// NewInvitationsRepository creates a new invitations repository.
func NewInvitationsRepository(db *sql.DB) *InvitationsRepository {
	return &InvitationsRepository{db: db}
}

const invitationColumns = `
	id, company_id, workspace_id, email, invited_role, token_digest,
	invited_by, created_at, expires_at, redeemed_at, redeemed_by,
	superseded_at, revoked_at
`

func scanInvitation(row interface{ Scan(...any) error }) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := row.Scan(
		&inv.ID,
		&inv.CompanyID,
		&inv.WorkspaceID,
		&inv.Email,
		&inv.InvitedRole,
		&inv.TokenDigest,
		&inv.InvitedBy,
		&inv.CreatedAt,
		&inv.ExpiresAt,
		&inv.RedeemedAt,
		&inv.RedeemedBy,
		&inv.SupersededAt,
		&inv.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInviteNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// CreateTx inserts a new invitation within a transaction.
func (r *InvitationsRepository) CreateTx(ctx context.Context, q Querier, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (
			id, company_id, workspace_id, email, invited_role, token_digest,
			invited_by, created_at, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := q.ExecContext(ctx, query,
		inv.ID,
		inv.CompanyID,
		inv.WorkspaceID,
		inv.Email,
		inv.InvitedRole,
		inv.TokenDigest,
		inv.InvitedBy,
		inv.CreatedAt,
		inv.ExpiresAt,
	)
	return err
}

// SupersedeActiveTx marks every still-active invitation for the
// (company, workspace?, email) key as superseded. The predicate repeats the
// active conditions so a concurrent redemption and a supersession cannot
// both win on the same row.
func (r *InvitationsRepository) SupersedeActiveTx(ctx context.Context, q Querier, companyID uuid.UUID, workspaceID *uuid.UUID, email string) error {
	query := `
		UPDATE invitations
		SET superseded_at = NOW()
		WHERE company_id = $1
			AND email = $2
			AND (workspace_id = $3 OR (workspace_id IS NULL AND $3::uuid IS NULL))
			AND redeemed_at IS NULL
			AND superseded_at IS NULL
			AND revoked_at IS NULL
			AND expires_at > NOW()
	`
	_, err := q.ExecContext(ctx, query, companyID, email, workspaceID)
	return err
}

// GetByTokenDigest retrieves an invitation by its token digest.
func (r *InvitationsRepository) GetByTokenDigest(ctx context.Context, digest string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token_digest = $1`
	return scanInvitation(r.db.QueryRowContext(ctx, query, digest))
}

// GetByTokenDigestTx retrieves an invitation by digest within a
// transaction, locking the row.
func (r *InvitationsRepository) GetByTokenDigestTx(ctx context.Context, q Querier, digest string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token_digest = $1 FOR UPDATE`
	return scanInvitation(q.QueryRowContext(ctx, query, digest))
}

// GetByID retrieves an invitation by ID.
func (r *InvitationsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	return scanInvitation(r.db.QueryRowContext(ctx, query, id))
}

// MarkRedeemedTx is the compare-and-set half of redemption: the row is
// only updated if it is still active at commit time. Returns false when
// the guard failed, meaning another transition won the race.
func (r *InvitationsRepository) MarkRedeemedTx(ctx context.Context, q Querier, id, redeemedBy uuid.UUID) (bool, error) {
	query := `
		UPDATE invitations
		SET redeemed_at = NOW(), redeemed_by = $2
		WHERE id = $1
			AND redeemed_at IS NULL
			AND superseded_at IS NULL
			AND revoked_at IS NULL
			AND expires_at > NOW()
	`
	result, err := q.ExecContext(ctx, query, id, redeemedBy)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// MarkRevoked marks an active invitation revoked. Returns false when the
// invitation was already in a terminal state, which callers treat as an
// idempotent no-op.
func (r *InvitationsRepository) MarkRevoked(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE invitations
		SET revoked_at = NOW()
		WHERE id = $1
			AND redeemed_at IS NULL
			AND superseded_at IS NULL
			AND revoked_at IS NULL
			AND expires_at > NOW()
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// ListByCompany retrieves invitations for a company, newest first.
func (r *InvitationsRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE company_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []*domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}
