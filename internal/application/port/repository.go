package port

import (
	"context"
	"time"

	"github.com/garyjia/caseflow/internal/domain/entity"
	"github.com/garyjia/caseflow/internal/domain/event"
	"github.com/garyjia/caseflow/internal/domain/flow"
)

// CaseRepository defines persistence operations for Case
type CaseRepository interface {
	// Create stores a new case, assigning an ID when empty
	Create(ctx context.Context, c *entity.Case) error

	// GetByID retrieves a case by ID, returning nil when absent
	GetByID(ctx context.Context, id string) (*entity.Case, error)

	// FindParent returns the case that has caseID registered as a sub-case
	// instance, or nil for a root case
	FindParent(ctx context.Context, caseID string) (*entity.Case, error)
}

// CaseHistoryRepository defines persistence operations for CaseHistory
type CaseHistoryRepository interface {
	// Record inserts or replaces the history record of a case
	Record(ctx context.Context, history *entity.CaseHistory) error

	// FindTerminalState returns the recorded state of a case.
	// ok is false when the case has no history record.
	FindTerminalState(ctx context.Context, caseID string) (state string, ok bool, err error)
}

// WorkItemRepository defines persistence operations for WorkItem
type WorkItemRepository interface {
	// Create stores a new work item, assigning an ID when empty
	Create(ctx context.Context, item *entity.WorkItem) error

	// GetByID retrieves a work item by ID, returning nil when absent
	GetByID(ctx context.Context, id string) (*entity.WorkItem, error)

	// FindActive returns the IDs of active items owned by any of the given
	// cases, restricted to the assignee when the filter is set.
	// Results are ordered by creation time.
	FindActive(ctx context.Context, caseIDs []string, assignee flow.Assignee) ([]string, error)

	// Complete marks an active item as completed
	Complete(ctx context.Context, id string, completedAt time.Time) error
}

// EventRepository defines persistence operations for flow events
type EventRepository interface {
	// Append stores an event
	Append(ctx context.Context, evt *event.Event) error

	// ListByCase returns the most recent events of a case, newest first
	ListByCase(ctx context.Context, caseID string, limit int) ([]*event.Event, error)

	// DeleteBefore removes events recorded before cutoff and returns how many were removed
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// EventPublisher hands events to their subscribers without blocking the caller
type EventPublisher interface {
	Publish(ctx context.Context, evt *event.Event)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
