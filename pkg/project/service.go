// Package project creates slugged projects inside workspaces.
package project

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/launchdeck/launchdeck/pkg/access"
	"github.com/launchdeck/launchdeck/pkg/domain"
	"github.com/launchdeck/launchdeck/pkg/repository"
	"github.com/launchdeck/launchdeck/pkg/slug"
)

// createRetries bounds how often creation re-allocates after the storage
// uniqueness constraint rejects a slug a concurrent insert took first.
const createRetries = 3

// Service creates projects.
type Service struct {
	gate      *access.Gate
	allocator *slug.Allocator
	projects  *repository.ProjectsRepository
}

// NewService creates a new project service.
func NewService(gate *access.Gate, projects *repository.ProjectsRepository) *Service {
	return &Service{
		gate:      gate,
		allocator: slug.NewAllocator(projects),
		projects:  projects,
	}
}

// Create authorizes the session for the workspace, allocates a slug from
// the name and inserts the project. The slug check is check-then-act; the
// database unique index is the authoritative guard, and a bounce off it
// triggers a fresh allocation up to createRetries times.
func (s *Service) Create(ctx context.Context, session *domain.Session, workspaceID uuid.UUID, name string) (*domain.Project, error) {
	dec, err := s.gate.Authorize(ctx, session, access.ActionWorkspaceEdit, access.WorkspaceScope(workspaceID))
	if err != nil {
		return nil, err
	}
	if !dec.Allowed {
		if dec.Reason == access.ReasonNotReady {
			return nil, domain.ErrNotReady
		}
		return nil, domain.ErrInsufficientPrivilege
	}

	for attempt := 0; attempt < createRetries; attempt++ {
		allocated, err := s.allocator.Allocate(ctx, workspaceID, name)
		if err != nil {
			return nil, fmt.Errorf("allocate slug: %w", err)
		}

		now := time.Now()
		p := &domain.Project{
			ID:          uuid.New(),
			WorkspaceID: workspaceID,
			Name:        name,
			Slug:        allocated,
			CreatedBy:   session.UserID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		err = s.projects.Create(ctx, p)
		if err == nil {
			return p, nil
		}
		if !repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("create project: %w", err)
		}
		// Lost the insert race; allocate again.
	}

	return nil, domain.ErrSlugAllocationExhausted
}
