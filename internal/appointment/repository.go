package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/agent-crm-scheduling/internal/db"
	"github.com/hackgods/agent-crm-scheduling/internal/rowmap"
)

// Repository contains all storage interactions needed by the service.
type Repository interface {
	GetByID(ctx context.Context, agentID, id uuid.UUID) (rowmap.Row, error)
	List(ctx context.Context, agentID uuid.UUID, f ListFilter) ([]rowmap.Row, error)
	Search(ctx context.Context, agentID uuid.UUID, term string) ([]rowmap.Row, error)

	// For conflict checks and views
	ListForDate(ctx context.Context, agentID uuid.UUID, date string) ([]rowmap.Row, error)
	ListInRange(ctx context.Context, agentID uuid.UUID, start, end string) ([]rowmap.Row, error)

	// Creation and updates
	Create(ctx context.Context, agentID uuid.UUID, d Draft) (db.MutationResult, error)
	Update(ctx context.Context, agentID, id uuid.UUID, p Patch) (db.MutationResult, error)
	UpdateStatus(ctx context.Context, agentID, id uuid.UUID, status Status) (db.MutationResult, error)
	Delete(ctx context.Context, agentID, id uuid.UUID) (db.MutationResult, error)

	ValidatePhone(ctx context.Context, agentID uuid.UUID, phone string) (rowmap.Row, error)
}
