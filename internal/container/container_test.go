package container

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/caseflow/internal/domain/entity"
	"github.com/garyjia/caseflow/internal/domain/event"
	"github.com/garyjia/caseflow/internal/domain/flow"
)

func testConfig(t *testing.T) *Config {
	cfg := DefaultConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "container.db")
	cfg.Flow.PollInterval = 20 * time.Millisecond
	return cfg
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(DefaultConfig(), nil)
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Database.Path = ""
	_, err = NewContainer(cfg, zap.NewNop())
	assert.ErrorContains(t, err, "database.path")
}

func TestContainer_Lifecycle(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	assert.False(t, c.Ready())
	assert.False(t, c.Health(context.Background()).Overall)

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(context.Background()), "second start")

	health := c.Health(context.Background())
	assert.True(t, health.Overall)
	assert.True(t, health.Components["database"].Healthy)
	assert.True(t, health.Components["workers"].Healthy)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close(), "second close")
	assert.Error(t, c.Start(context.Background()), "start after close")
}

func TestContainer_StartCancelled(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Start(ctx), context.Canceled)
}

func TestContainer_ResolvesAgainstDatabase(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	repos := c.Repositories()
	require.NoError(t, repos.Case.Create(ctx, &entity.Case{ID: "order", DefinitionKey: "order"}))
	require.NoError(t, repos.Case.Create(ctx, &entity.Case{ID: "shipping", DefinitionKey: "shipping", SuperCaseID: "order"}))
	require.NoError(t, repos.WorkItem.Create(ctx, &entity.WorkItem{ID: "pack", CaseID: "shipping", Name: "pack", Assignee: "alice"}))

	services := c.Services()

	// completing the only item leaves nothing, then the parent gets a new item
	item, err := services.Item.Complete(ctx, "pack")
	require.NoError(t, err)

	time.AfterFunc(100*time.Millisecond, func() {
		_ = repos.WorkItem.Create(context.Background(), &entity.WorkItem{ID: "invoice", CaseID: "order", Name: "invoice", Assignee: "alice"})
	})

	outcome, err := services.Flow.ResolveAfterItem(ctx, item, false, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"invoice"}, outcome.Items())

	_, err = services.Item.Complete(ctx, "pack")
	assert.True(t, errors.Is(err, flow.ErrItemNotActive))

	require.NoError(t, repos.History.Record(ctx, &entity.CaseHistory{CaseID: "order", State: entity.CaseStateCompleted}))
	_, err = services.Item.Complete(ctx, "invoice")
	require.NoError(t, err)

	outcome, err = services.Flow.ResolveNext(ctx, "shipping", flow.AnyAssignee(), 5)
	require.NoError(t, err)
	assert.True(t, outcome.IsEnded())

	// completion of "pack" plus two resolutions are recorded in the background
	require.Eventually(t, func() bool {
		events, err := services.Event.List(ctx, "shipping", 10)
		return err == nil && len(events) == 3
	}, 2*time.Second, 20*time.Millisecond)

	events, err := services.Event.List(ctx, "shipping", 10)
	require.NoError(t, err)
	assert.Equal(t, event.TypeNextResolved, events[0].Type)
	assert.Equal(t, "ENDED", events[0].Attr(event.AttrOutcome))
	assert.Equal(t, event.TypeItemCompleted, events[2].Type)
	assert.Equal(t, "pack", events[2].Attr(event.AttrItemID))
}

func TestContainer_PrunesExpiredEvents(t *testing.T) {
	cfg := testConfig(t)
	cfg.Events = EventsConfig{Retention: time.Hour, PruneInterval: 20 * time.Millisecond}
	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	events := c.Repositories().Event

	old := event.New(event.TypeItemCompleted, "case-1", nil)
	old.Timestamp = time.Now().Add(-2 * time.Hour).UTC()
	require.NoError(t, events.Append(ctx, old))
	require.NoError(t, events.Append(ctx, event.New(event.TypeNextResolved, "case-1", nil)))

	require.Eventually(t, func() bool {
		list, err := events.ListByCase(ctx, "case-1", 10)
		return err == nil && len(list) == 1 && list[0].Type == event.TypeNextResolved
	}, 2*time.Second, 20*time.Millisecond)
}

func TestConfig_ValidateEvents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Events.Retention = -time.Second
	assert.ErrorContains(t, cfg.Validate(), "events.retention")

	cfg = DefaultConfig()
	cfg.Events.PruneInterval = 0
	assert.ErrorContains(t, cfg.Validate(), "events.prune_interval")

	cfg.Events.Retention = 0
	assert.NoError(t, cfg.Validate(), "no interval needed when retention is off")
}
