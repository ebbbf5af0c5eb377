package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/caseflow/internal/application/port"
	"github.com/garyjia/caseflow/internal/domain/entity"
	"github.com/garyjia/caseflow/internal/infrastructure/persistence/sqlite"
)

// CaseRepository implements port.CaseRepository
type CaseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *sql.DB, logger *zap.Logger) port.CaseRepository {
	return &CaseRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new case
func (r *CaseRepository) Create(ctx context.Context, c *entity.Case) error {
	query := `
		INSERT INTO cases (id, definition_key, business_key, super_case_id, started_at)
		VALUES (?, ?, ?, ?, ?)
	`

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.StartedAt.IsZero() {
		c.StartedAt = time.Now().UTC()
	}

	var businessKey, superCaseID sql.NullString
	if c.BusinessKey != "" {
		businessKey = sql.NullString{String: c.BusinessKey, Valid: true}
	}
	if c.SuperCaseID != "" {
		superCaseID = sql.NullString{String: c.SuperCaseID, Valid: true}
	}

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		c.ID,
		c.DefinitionKey,
		businessKey,
		superCaseID,
		c.StartedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create case",
			zap.String("case_id", c.ID),
			zap.String("super_case_id", c.SuperCaseID),
			zap.Error(err))
		return fmt.Errorf("failed to create case: %w", err)
	}

	return nil
}

// GetByID retrieves a case by ID
func (r *CaseRepository) GetByID(ctx context.Context, id string) (*entity.Case, error) {
	query := `
		SELECT id, definition_key, business_key, super_case_id, started_at
		FROM cases
		WHERE id = ?
	`

	c, err := r.scanCase(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get case by ID", zap.String("case_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	return c, nil
}

// FindParent returns the case that spawned caseID as a sub-case instance
func (r *CaseRepository) FindParent(ctx context.Context, caseID string) (*entity.Case, error) {
	query := `
		SELECT p.id, p.definition_key, p.business_key, p.super_case_id, p.started_at
		FROM cases c
		JOIN cases p ON p.id = c.super_case_id
		WHERE c.id = ?
	`

	c, err := r.scanCase(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, caseID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find parent case", zap.String("case_id", caseID), zap.Error(err))
		return nil, fmt.Errorf("failed to find parent case: %w", sqlite.WithContextCause(ctx, err))
	}

	return c, nil
}

func (r *CaseRepository) scanCase(row *sql.Row) (*entity.Case, error) {
	var c entity.Case
	var businessKey, superCaseID sql.NullString

	if err := row.Scan(&c.ID, &c.DefinitionKey, &businessKey, &superCaseID, &c.StartedAt); err != nil {
		return nil, err
	}

	c.BusinessKey = businessKey.String
	c.SuperCaseID = superCaseID.String
	return &c, nil
}

var _ port.CaseRepository = (*CaseRepository)(nil)
