package service

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/caseflow/internal/application/port"
	"github.com/garyjia/caseflow/internal/domain/entity"
	"github.com/garyjia/caseflow/internal/domain/event"
	"github.com/garyjia/caseflow/internal/domain/flow"
)

// ItemService manages work item operations used around a flow-to-next wait.
type ItemService interface {
	// Get retrieves a work item by its ID
	Get(ctx context.Context, itemID string) (*entity.WorkItem, error)

	// Complete closes an active work item and returns its updated state
	Complete(ctx context.Context, itemID string) (*entity.WorkItem, error)

	// ListActive returns the active items of a single case
	ListActive(ctx context.Context, caseID string, assignee flow.Assignee) ([]string, error)
}

type itemServiceImpl struct {
	itemRepo  port.WorkItemRepository
	txManager port.TransactionManager
	publisher port.EventPublisher
	logger    Logger
	now       func() time.Time
}

// NewItemService creates a new ItemService.
// publisher may be nil, in which case no events are raised.
func NewItemService(
	itemRepo port.WorkItemRepository,
	txManager port.TransactionManager,
	publisher port.EventPublisher,
	logger Logger,
) ItemService {
	return &itemServiceImpl{
		itemRepo:  itemRepo,
		txManager: txManager,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Get implements ItemService
func (s *itemServiceImpl) Get(ctx context.Context, itemID string) (*entity.WorkItem, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get work item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s", flow.ErrItemNotFound, itemID)
	}
	return item, nil
}

// Complete implements ItemService
func (s *itemServiceImpl) Complete(ctx context.Context, itemID string) (*entity.WorkItem, error) {
	var completed *entity.WorkItem

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		item, err := s.Get(ctx, itemID)
		if err != nil {
			return err
		}
		if !item.IsActive() {
			return fmt.Errorf("%w: %s is %s", flow.ErrItemNotActive, itemID, item.Status)
		}

		at := s.now()
		if err := s.itemRepo.Complete(ctx, itemID, at); err != nil {
			return fmt.Errorf("complete work item: %w", err)
		}

		item.Status = entity.ItemStatusCompleted
		item.CompletedAt = &at
		completed = item
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to complete work item",
			"error", err,
			"item_id", itemID)
		return nil, err
	}

	s.logger.Info("Work item completed",
		"item_id", itemID,
		"case_id", completed.CaseID,
		"assignee", completed.Assignee)

	if s.publisher != nil {
		s.publisher.Publish(ctx, event.New(event.TypeItemCompleted, completed.CaseID, map[string]string{
			event.AttrItemID:   completed.ID,
			event.AttrAssignee: completed.Assignee,
		}))
	}

	return completed, nil
}

// ListActive implements ItemService
func (s *itemServiceImpl) ListActive(ctx context.Context, caseID string, assignee flow.Assignee) ([]string, error) {
	return s.itemRepo.FindActive(ctx, []string{caseID}, assignee)
}
