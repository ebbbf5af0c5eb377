package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/caseflow/internal/domain/event"
)

type stubEventRepo struct {
	gotLimit int
	events   []*event.Event
	err      error
}

func (r *stubEventRepo) Append(ctx context.Context, evt *event.Event) error {
	return nil
}

func (r *stubEventRepo) ListByCase(ctx context.Context, caseID string, limit int) ([]*event.Event, error) {
	r.gotLimit = limit
	return r.events, r.err
}

func (r *stubEventRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestEventService_List(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "default", limit: 0, wantLimit: 50},
		{name: "negative", limit: -5, wantLimit: 50},
		{name: "explicit", limit: 10, wantLimit: 10},
		{name: "capped", limit: 10000, wantLimit: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubEventRepo{}
			svc := NewEventService(repo)

			events, err := svc.List(context.Background(), "case-1", tt.limit)

			require.NoError(t, err)
			assert.NotNil(t, events)
			assert.Empty(t, events)
			assert.Equal(t, tt.wantLimit, repo.gotLimit)
		})
	}

	t.Run("repository failure", func(t *testing.T) {
		errDB := errors.New("database is locked")
		svc := NewEventService(&stubEventRepo{err: errDB})

		_, err := svc.List(context.Background(), "case-1", 10)

		assert.ErrorIs(t, err, errDB)
	})
}
