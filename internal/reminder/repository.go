package reminder

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/agent-crm-scheduling/internal/db"
	"github.com/hackgods/agent-crm-scheduling/internal/rowmap"
)

// Repository is everything the reminder service asks of storage. Rows come
// back raw; mapping happens in the service.
type Repository interface {
	// Paged retrieval
	ListFiltered(ctx context.Context, agentID uuid.UUID, f Filter) ([]rowmap.Row, error)
	ListUnfiltered(ctx context.Context, agentID uuid.UUID, f Filter) ([]rowmap.Row, error)

	// Cross-source counts behind the unfiltered total
	CountAgentReminders(ctx context.Context, agentID uuid.UUID) (int64, error)
	CountExpiringPolicies(ctx context.Context, agentID uuid.UUID, daysAhead int) (int64, error)
	CountBirthdaysOn(ctx context.Context, agentID uuid.UUID, days []MonthDay) (int64, error)
	CountActiveAppointments(ctx context.Context, agentID uuid.UUID) (int64, error)

	// Single reminder
	GetByID(ctx context.Context, agentID, id uuid.UUID) (rowmap.Row, error)
	Create(ctx context.Context, agentID uuid.UUID, d Draft) (db.MutationResult, error)
	Update(ctx context.Context, agentID, id uuid.UUID, p Patch) (db.MutationResult, error)
	Delete(ctx context.Context, agentID, id uuid.UUID) (db.MutationResult, error)
	Complete(ctx context.Context, agentID, id uuid.UUID, notes *string) (db.MutationResult, error)
	UpdateStatus(ctx context.Context, agentID, id uuid.UUID, status Status) (db.MutationResult, error)

	// Flat lists
	ListByType(ctx context.Context, agentID uuid.UUID, t Type) ([]rowmap.Row, error)
	ListByStatus(ctx context.Context, agentID uuid.UUID, s Status) ([]rowmap.Row, error)
	ListForDate(ctx context.Context, agentID uuid.UUID, date string) ([]rowmap.Row, error)
	ListBirthdaysOn(ctx context.Context, agentID uuid.UUID, days []MonthDay) ([]rowmap.Row, error)
	ListPolicyExpiries(ctx context.Context, agentID uuid.UUID, daysAhead int) ([]rowmap.Row, error)
	ListDueAutoSend(ctx context.Context, date string) ([]rowmap.Row, error)

	// Settings and statistics
	GetSettings(ctx context.Context, agentID uuid.UUID) ([]rowmap.Row, error)
	UpsertSettings(ctx context.Context, agentID uuid.UUID, d SettingsDraft) (rowmap.Row, error)
	GetStatistics(ctx context.Context, agentID uuid.UUID, today string) (rowmap.Row, error)
}
