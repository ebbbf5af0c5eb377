package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/caseflow/internal/application/port"
	"github.com/garyjia/caseflow/internal/domain/event"
	"github.com/garyjia/caseflow/internal/infrastructure/persistence/sqlite"
)

// EventRepository implements port.EventRepository
type EventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEventRepository creates a new flow event repository
func NewEventRepository(db *sql.DB, logger *zap.Logger) port.EventRepository {
	return &EventRepository{
		db:     db,
		logger: logger,
	}
}

// Append stores an event
func (r *EventRepository) Append(ctx context.Context, evt *event.Event) error {
	query := `
		INSERT INTO flow_events (id, type, case_id, attributes, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	attributes := evt.Attributes
	if attributes == nil {
		attributes = map[string]string{}
	}
	attrsJSON, err := json.Marshal(attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal event attributes: %w", err)
	}

	_, err = sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		evt.ID,
		evt.Type,
		evt.CaseID,
		string(attrsJSON),
		evt.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to append flow event",
			zap.String("event_id", evt.ID),
			zap.String("event_type", evt.Type.String()),
			zap.String("case_id", evt.CaseID),
			zap.Error(err))
		return fmt.Errorf("failed to append flow event: %w", err)
	}

	return nil
}

// ListByCase returns the most recent events of a case, newest first
func (r *EventRepository) ListByCase(ctx context.Context, caseID string, limit int) ([]*event.Event, error) {
	query := `
		SELECT id, type, case_id, attributes, created_at
		FROM flow_events
		WHERE case_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, caseID, limit)
	if err != nil {
		r.logger.Error("Failed to list flow events", zap.String("case_id", caseID), zap.Error(err))
		return nil, fmt.Errorf("failed to list flow events: %w", err)
	}
	defer rows.Close()

	var events []*event.Event
	for rows.Next() {
		var evt event.Event
		var attrsJSON string

		if err := rows.Scan(&evt.ID, &evt.Type, &evt.CaseID, &attrsJSON, &evt.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan flow event: %w", err)
		}
		if err := json.Unmarshal([]byte(attrsJSON), &evt.Attributes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attributes of event %s: %w", evt.ID, err)
		}

		events = append(events, &evt)
	}

	return events, rows.Err()
}

// DeleteBefore removes events recorded before cutoff
func (r *EventRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM flow_events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete flow events: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted flow events: %w", err)
	}
	return n, nil
}

var _ port.EventRepository = (*EventRepository)(nil)
