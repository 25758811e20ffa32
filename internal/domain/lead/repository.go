package lead

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for lead persistence.
type Repository interface {
	// GetByID retrieves a lead by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Lead, error)

	// UpdateStatus overwrites the lead's status unconditionally.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}
