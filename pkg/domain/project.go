package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project is a slugged resource inside a workspace. The slug is unique
// among non-deleted projects of the same workspace and immutable after
// creation.
type Project struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Name        string
	Slug        string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}
