package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/pkg/domain"
)

// CompaniesRepository handles company and workspace persistence.
type CompaniesRepository struct {
	db *sql.DB
}

// NewCompaniesRepository creates a new companies repository.
func NewCompaniesRepository(db *sql.DB) *CompaniesRepository {
	return &CompaniesRepository{db: db}
}

// GetByID retrieves a company by ID.
func (r *CompaniesRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	query := `
		SELECT id, name, slug, created_by, onboarded_at, created_at, updated_at, deleted_at
		FROM companies
		WHERE id = $1 AND deleted_at IS NULL
	`
	var c domain.Company
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.CreatedBy,
		&c.OnboardedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetWorkspace retrieves a workspace by ID.
func (r *CompaniesRepository) GetWorkspace(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	query := `
		SELECT id, company_id, name, created_at, updated_at, deleted_at
		FROM workspaces
		WHERE id = $1 AND deleted_at IS NULL
	`
	var w domain.Workspace
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&w.ID,
		&w.CompanyID,
		&w.Name,
		&w.CreatedAt,
		&w.UpdatedAt,
		&w.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, err
	}
	return &w, nil
}

// HasActiveWorkspace reports whether the company has at least one
// non-deleted workspace. Onboarding is only complete once it does.
func (r *CompaniesRepository) HasActiveWorkspace(ctx context.Context, companyID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM workspaces WHERE company_id = $1 AND deleted_at IS NULL
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, companyID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
