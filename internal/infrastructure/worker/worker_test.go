package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubWorker struct {
	name     string
	startErr error
	stopErr  error
	log      *[]string
}

func (w *stubWorker) Start(ctx context.Context) error {
	*w.log = append(*w.log, "start "+w.name)
	return w.startErr
}

func (w *stubWorker) Stop() error {
	*w.log = append(*w.log, "stop "+w.name)
	return w.stopErr
}

func (w *stubWorker) Name() string { return w.name }

func TestManager_Lifecycle(t *testing.T) {
	var log []string
	m := NewManager(zap.NewNop())
	m.Register(&stubWorker{name: "a", log: &log})
	m.Register(&stubWorker{name: "b", log: &log})
	assert.Equal(t, 2, m.Count())

	require.NoError(t, m.StartAll(context.Background()))
	assert.True(t, m.Running())
	assert.Error(t, m.StartAll(context.Background()))

	require.NoError(t, m.StopAll())
	assert.False(t, m.Running())
	require.NoError(t, m.StopAll(), "stopping twice is a no-op")

	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, log)
}

func TestManager_StartFailureStopsStarted(t *testing.T) {
	var log []string
	errBoom := errors.New("boom")
	m := NewManager(zap.NewNop())
	m.Register(&stubWorker{name: "a", log: &log})
	m.Register(&stubWorker{name: "b", startErr: errBoom, log: &log})
	m.Register(&stubWorker{name: "c", log: &log})

	err := m.StartAll(context.Background())

	assert.ErrorIs(t, err, errBoom)
	assert.False(t, m.Running())
	assert.Equal(t, []string{"start a", "start b", "stop a"}, log)
}

func TestManager_StopErrorsAreCombined(t *testing.T) {
	var log []string
	errA, errB := errors.New("a failed"), errors.New("b failed")
	m := NewManager(zap.NewNop())
	m.Register(&stubWorker{name: "a", stopErr: errA, log: &log})
	m.Register(&stubWorker{name: "b", stopErr: errB, log: &log})
	require.NoError(t, m.StartAll(context.Background()))

	err := m.StopAll()

	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

type fakeDeleter struct {
	mu      sync.Mutex
	cutoffs []time.Time
	n       int64
	err     error
}

func (f *fakeDeleter) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.n, f.err
}

func (f *fakeDeleter) calls() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.cutoffs...)
}

func TestNewEventPruner_Validation(t *testing.T) {
	_, err := NewEventPruner(EventPrunerConfig{Retention: 0, Interval: time.Second}, &fakeDeleter{}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewEventPruner(EventPrunerConfig{Retention: time.Hour, Interval: 0}, &fakeDeleter{}, zap.NewNop())
	assert.Error(t, err)
}

func TestEventPruner_PrunesOnStartAndInterval(t *testing.T) {
	fixed := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	deleter := &fakeDeleter{n: 2}
	p, err := NewEventPruner(EventPrunerConfig{Retention: 24 * time.Hour, Interval: 20 * time.Millisecond}, deleter, zap.NewNop())
	require.NoError(t, err)
	p.now = func() time.Time { return fixed }

	require.NoError(t, p.Start(context.Background()))
	assert.Error(t, p.Start(context.Background()), "already running")

	require.Eventually(t, func() bool { return len(deleter.calls()) >= 3 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, p.Stop())
	require.NoError(t, p.Stop())

	calls := deleter.calls()
	assert.Equal(t, fixed.Add(-24*time.Hour), calls[0])
	assert.Equal(t, int64(2*len(calls)), p.Pruned())
	assert.NoError(t, p.LastError())

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, deleter.calls(), len(calls), "no prune after Stop")
}

func TestEventPruner_KeepsRunningAfterFailure(t *testing.T) {
	errDB := errors.New("database is locked")
	deleter := &fakeDeleter{err: errDB}
	p, err := NewEventPruner(EventPrunerConfig{Retention: time.Hour, Interval: 10 * time.Millisecond}, deleter, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, p.Start(context.Background()))
	require.Eventually(t, func() bool { return len(deleter.calls()) >= 2 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, p.Stop())

	assert.ErrorIs(t, p.LastError(), errDB)
	assert.Zero(t, p.Pruned())
}

func TestEventPruner_StopsWithParentContext(t *testing.T) {
	deleter := &fakeDeleter{}
	p, err := NewEventPruner(EventPrunerConfig{Retention: time.Hour, Interval: 10 * time.Millisecond}, deleter, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Start(ctx))
	cancel()

	done := make(chan struct{})
	go func() {
		_ = p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the parent context was cancelled")
	}
}
