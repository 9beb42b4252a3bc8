package domain

import (
	"time"

	"github.com/google/uuid"
)

// Company is the top-level tenant.
type Company struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	CreatedBy   uuid.UUID
	OnboardedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Onboarded reports whether the company has completed initial setup.
func (c *Company) Onboarded() bool {
	return c.OnboardedAt != nil && c.DeletedAt == nil
}

// Workspace is a sub-scope of a company.
type Workspace struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
