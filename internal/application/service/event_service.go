package service

import (
	"context"

	"github.com/garyjia/caseflow/internal/application/port"
	"github.com/garyjia/caseflow/internal/domain/event"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// EventService reads the recorded flow events of a case
type EventService interface {
	// List returns the most recent events of a case, newest first.
	// A non-positive limit selects the default, larger limits are capped.
	List(ctx context.Context, caseID string, limit int) ([]*event.Event, error)
}

type eventServiceImpl struct {
	eventRepo port.EventRepository
}

// NewEventService creates a new EventService
func NewEventService(eventRepo port.EventRepository) EventService {
	return &eventServiceImpl{eventRepo: eventRepo}
}

// List implements EventService
func (s *eventServiceImpl) List(ctx context.Context, caseID string, limit int) ([]*event.Event, error) {
	switch {
	case limit <= 0:
		limit = defaultEventLimit
	case limit > maxEventLimit:
		limit = maxEventLimit
	}

	events, err := s.eventRepo.ListByCase(ctx, caseID, limit)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []*event.Event{}
	}
	return events, nil
}
