package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/caseflow/internal/application/port"
	"github.com/garyjia/caseflow/internal/domain/entity"
	"github.com/garyjia/caseflow/internal/infrastructure/persistence/sqlite"
)

// CaseHistoryRepository implements port.CaseHistoryRepository
type CaseHistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCaseHistoryRepository creates a new case history repository
func NewCaseHistoryRepository(db *sql.DB, logger *zap.Logger) port.CaseHistoryRepository {
	return &CaseHistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Record inserts or replaces the history record of a case.
// A terminal state without an end time is stamped with the current time.
func (r *CaseHistoryRepository) Record(ctx context.Context, history *entity.CaseHistory) error {
	query := `
		INSERT INTO case_history (case_id, state, ended_at)
		VALUES (?, ?, ?)
		ON CONFLICT(case_id) DO UPDATE SET
			state = excluded.state,
			ended_at = excluded.ended_at
	`

	if history.EndedAt == nil && entity.IsTerminalState(history.State) {
		now := time.Now().UTC()
		history.EndedAt = &now
	}

	var endedAt sql.NullTime
	if history.EndedAt != nil {
		endedAt = sql.NullTime{Time: *history.EndedAt, Valid: true}
	}

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		history.CaseID,
		history.State,
		endedAt,
	)
	if err != nil {
		r.logger.Error("Failed to record case history",
			zap.String("case_id", history.CaseID),
			zap.String("state", history.State),
			zap.Error(err))
		return fmt.Errorf("failed to record case history: %w", err)
	}

	return nil
}

// FindTerminalState returns the recorded history state of a case
func (r *CaseHistoryRepository) FindTerminalState(ctx context.Context, caseID string) (string, bool, error) {
	query := `SELECT state FROM case_history WHERE case_id = ?`

	var state string
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, caseID).Scan(&state)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("Failed to find case state", zap.String("case_id", caseID), zap.Error(err))
		return "", false, fmt.Errorf("failed to find case state: %w", sqlite.WithContextCause(ctx, err))
	}

	return state, true, nil
}

var _ port.CaseHistoryRepository = (*CaseHistoryRepository)(nil)
