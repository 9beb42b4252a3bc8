package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/pkg/domain"
)

// ProjectsRepository handles project persistence. It implements
// slug.SiblingChecker for slug allocation within a workspace.
type ProjectsRepository struct {
	db *sql.DB
}

// NewProjectsRepository creates a new projects repository.
func NewProjectsRepository(db *sql.DB) *ProjectsRepository {
	return &ProjectsRepository{db: db}
}

// ExistsBySlug reports whether an active project with the slug exists in
// the workspace.
func (r *ProjectsRepository) ExistsBySlug(ctx context.Context, workspaceID uuid.UUID, slug string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM projects
			WHERE workspace_id = $1 AND slug = $2 AND deleted_at IS NULL
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, workspaceID, slug).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts a project. The partial unique index on
// (workspace_id, slug) WHERE deleted_at IS NULL is the authoritative
// uniqueness guard; callers detect the conflict with IsUniqueViolation
// and re-allocate.
func (r *ProjectsRepository) Create(ctx context.Context, p *domain.Project) error {
	query := `
		INSERT INTO projects (id, workspace_id, name, slug, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.WorkspaceID,
		p.Name,
		p.Slug,
		p.CreatedBy,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

// GetBySlug retrieves an active project by workspace and slug.
func (r *ProjectsRepository) GetBySlug(ctx context.Context, workspaceID uuid.UUID, slug string) (*domain.Project, error) {
	query := `
		SELECT id, workspace_id, name, slug, created_by, created_at, updated_at, deleted_at
		FROM projects
		WHERE workspace_id = $1 AND slug = $2 AND deleted_at IS NULL
	`
	var p domain.Project
	err := r.db.QueryRowContext(ctx, query, workspaceID, slug).Scan(
		&p.ID,
		&p.WorkspaceID,
		&p.Name,
		&p.Slug,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}
