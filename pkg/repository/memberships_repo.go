package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/pkg/domain"
)

// MembershipsRepository handles company and workspace membership
// persistence. It also implements access.RoleFinder.
type MembershipsRepository struct {
	db *sql.DB
}

// NewMembershipsRepository creates a new memberships repository.
func NewMembershipsRepository(db *sql.DB) *MembershipsRepository {
	return &MembershipsRepository{db: db}
}

// FindCompanyRole returns the company role a user holds, or false if the
// user has no active membership in the company.
func (r *MembershipsRepository) FindCompanyRole(ctx context.Context, userID, companyID uuid.UUID) (domain.CompanyRole, bool, error) {
	query := `
		SELECT role FROM memberships
		WHERE user_id = $1 AND company_id = $2 AND deleted_at IS NULL
	`
	var role domain.CompanyRole
	err := r.db.QueryRowContext(ctx, query, userID, companyID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return role, true, nil
}

// FindWorkspaceRole returns the workspace role a user holds, or false if
// the user has no active membership in the workspace.
func (r *MembershipsRepository) FindWorkspaceRole(ctx context.Context, userID, workspaceID uuid.UUID) (domain.WorkspaceRole, bool, error) {
	query := `
		SELECT role FROM workspace_memberships
		WHERE user_id = $1 AND workspace_id = $2 AND deleted_at IS NULL
	`
	var role domain.WorkspaceRole
	err := r.db.QueryRowContext(ctx, query, userID, workspaceID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return role, true, nil
}

// GetCompanyRoleForUpdateTx reads a user's company role inside a
// transaction with a row lock, so a concurrent grant cannot interleave.
func (r *MembershipsRepository) GetCompanyRoleForUpdateTx(ctx context.Context, q Querier, userID, companyID uuid.UUID) (domain.CompanyRole, bool, error) {
	query := `
		SELECT role FROM memberships
		WHERE user_id = $1 AND company_id = $2 AND deleted_at IS NULL
		FOR UPDATE
	`
	var role domain.CompanyRole
	err := q.QueryRowContext(ctx, query, userID, companyID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return role, true, nil
}

// GetWorkspaceRoleForUpdateTx reads a user's workspace role inside a
// transaction with a row lock.
func (r *MembershipsRepository) GetWorkspaceRoleForUpdateTx(ctx context.Context, q Querier, userID, workspaceID uuid.UUID) (domain.WorkspaceRole, bool, error) {
	query := `
		SELECT role FROM workspace_memberships
		WHERE user_id = $1 AND workspace_id = $2 AND deleted_at IS NULL
		FOR UPDATE
	`
	var role domain.WorkspaceRole
	err := q.QueryRowContext(ctx, query, userID, workspaceID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return role, true, nil
}

// CreateCompanyMembershipTx inserts a company membership within a
// transaction.
func (r *MembershipsRepository) CreateCompanyMembershipTx(ctx context.Context, q Querier, m *domain.Membership) error {
	query := `
		INSERT INTO memberships (id, company_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.ExecContext(ctx, query, m.ID, m.CompanyID, m.UserID, m.Role, m.CreatedAt, m.UpdatedAt)
	return err
}

// CreateWorkspaceMembershipTx inserts a workspace membership within a
// transaction.
func (r *MembershipsRepository) CreateWorkspaceMembershipTx(ctx context.Context, q Querier, m *domain.WorkspaceMembership) error {
	query := `
		INSERT INTO workspace_memberships (id, workspace_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.ExecContext(ctx, query, m.ID, m.WorkspaceID, m.UserID, m.Role, m.CreatedAt, m.UpdatedAt)
	return err
}

// UpdateCompanyRoleTx updates a user's company role within a transaction.
func (r *MembershipsRepository) UpdateCompanyRoleTx(ctx context.Context, q Querier, userID, companyID uuid.UUID, role domain.CompanyRole) error {
	query := `
		UPDATE memberships
		SET role = $3, updated_at = NOW()
		WHERE user_id = $1 AND company_id = $2 AND deleted_at IS NULL
	`
	result, err := q.ExecContext(ctx, query, userID, companyID, role)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMembershipNotFound
	}
	return nil
}

// UpdateWorkspaceRoleTx updates a user's workspace role within a
// transaction.
func (r *MembershipsRepository) UpdateWorkspaceRoleTx(ctx context.Context, q Querier, userID, workspaceID uuid.UUID, role domain.WorkspaceRole) error {
	query := `
		UPDATE workspace_memberships
		SET role = $3, updated_at = NOW()
		WHERE user_id = $1 AND workspace_id = $2 AND deleted_at IS NULL
	`
	result, err := q.ExecContext(ctx, query, userID, workspaceID, role)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMembershipNotFound
	}
	return nil
}

// ListWorkspaceAccess returns the workspaces a user belongs to within a
// company, with roles, ordered by join time. Used when assembling the
// per-request session snapshot.
func (r *MembershipsRepository) ListWorkspaceAccess(ctx context.Context, userID, companyID uuid.UUID) ([]domain.WorkspaceAccess, error) {
	query := `
		SELECT wm.workspace_id, wm.role
		FROM workspace_memberships wm
		INNER JOIN workspaces w ON w.id = wm.workspace_id
		WHERE wm.user_id = $1
			AND w.company_id = $2
			AND wm.deleted_at IS NULL
			AND w.deleted_at IS NULL
		ORDER BY wm.created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.WorkspaceAccess
	for rows.Next() {
		var wa domain.WorkspaceAccess
		if err := rows.Scan(&wa.WorkspaceID, &wa.Role); err != nil {
			return nil, err
		}
		result = append(result, wa)
	}
	return result, rows.Err()
}

// FindPrimaryCompany returns the company the user joined first, or false
// when the user belongs to none.
func (r *MembershipsRepository) FindPrimaryCompany(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error) {
	query := `
		SELECT company_id FROM memberships
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
		LIMIT 1
	`
	var companyID uuid.UUID
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, err
	}
	return companyID, true, nil
}

// NewCompanyMembership builds a membership record with fresh timestamps.
func NewCompanyMembership(companyID, userID uuid.UUID, role domain.CompanyRole) *domain.Membership {
	now := time.Now()
	return &domain.Membership{
		ID:        uuid.New(),
		CompanyID: companyID,
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewWorkspaceMembership builds a workspace membership record with fresh
// timestamps.
func NewWorkspaceMembership(workspaceID, userID uuid.UUID, role domain.WorkspaceRole) *domain.WorkspaceMembership {
	now := time.Now()
	return &domain.WorkspaceMembership{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
