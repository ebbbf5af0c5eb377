package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/caseflow/internal/application/port"
	"github.com/garyjia/caseflow/internal/domain/entity"
	"github.com/garyjia/caseflow/internal/domain/flow"
	"github.com/garyjia/caseflow/internal/infrastructure/persistence/sqlite"
)

// WorkItemRepository implements port.WorkItemRepository
type WorkItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkItemRepository creates a new work item repository
func NewWorkItemRepository(db *sql.DB, logger *zap.Logger) port.WorkItemRepository {
	return &WorkItemRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new work item
func (r *WorkItemRepository) Create(ctx context.Context, item *entity.WorkItem) error {
	query := `
		INSERT INTO work_items (id, case_id, name, assignee, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Status == "" {
		item.Status = entity.ItemStatusActive
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	var assignee sql.NullString
	if item.Assignee != "" {
		assignee = sql.NullString{String: item.Assignee, Valid: true}
	}

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		item.ID,
		item.CaseID,
		item.Name,
		assignee,
		item.Status,
		item.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create work item",
			zap.String("case_id", item.CaseID),
			zap.String("name", item.Name),
			zap.Error(err))
		return fmt.Errorf("failed to create work item: %w", err)
	}

	return nil
}

// GetByID retrieves a work item by ID
func (r *WorkItemRepository) GetByID(ctx context.Context, id string) (*entity.WorkItem, error) {
	query := `
		SELECT id, case_id, name, assignee, status, created_at, completed_at
		FROM work_items
		WHERE id = ?
	`

	var item entity.WorkItem
	var assignee sql.NullString
	var completedAt sql.NullTime

	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.CaseID,
		&item.Name,
		&assignee,
		&item.Status,
		&item.CreatedAt,
		&completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get work item by ID", zap.String("item_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get work item: %w", err)
	}

	item.Assignee = assignee.String
	if completedAt.Valid {
		item.CompletedAt = &completedAt.Time
	}

	return &item, nil
}

// FindActive returns active item IDs owned by any of caseIDs in one query
func (r *WorkItemRepository) FindActive(ctx context.Context, caseIDs []string, assignee flow.Assignee) ([]string, error) {
	if len(caseIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(caseIDs)), ",")
	query := `
		SELECT id FROM work_items
		WHERE status = ? AND case_id IN (` + placeholders + `)`

	args := make([]interface{}, 0, len(caseIDs)+2)
	args = append(args, entity.ItemStatusActive)
	for _, id := range caseIDs {
		args = append(args, id)
	}
	if userID, ok := assignee.Get(); ok {
		query += ` AND assignee = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to find active work items",
			zap.Strings("case_ids", caseIDs),
			zap.String("assignee", assignee.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to find active work items: %w", sqlite.WithContextCause(ctx, err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read active work items: %w", sqlite.WithContextCause(ctx, err))
	}

	return ids, nil
}

// Complete marks an active item as completed
func (r *WorkItemRepository) Complete(ctx context.Context, id string, completedAt time.Time) error {
	query := `
		UPDATE work_items
		SET status = ?, completed_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		entity.ItemStatusCompleted,
		completedAt,
		id,
		entity.ItemStatusActive,
	)
	if err != nil {
		r.logger.Error("Failed to complete work item", zap.String("item_id", id), zap.Error(err))
		return fmt.Errorf("failed to complete work item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", flow.ErrItemNotActive, id)
	}

	return nil
}

var _ port.WorkItemRepository = (*WorkItemRepository)(nil)
