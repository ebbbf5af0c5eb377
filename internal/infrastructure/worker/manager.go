package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Worker is a background job owned by the Manager
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
	Name() string
}

// Manager starts registered workers together and stops them in reverse order
type Manager struct {
	logger *zap.Logger

	mu      sync.Mutex
	workers []Worker
	started []Worker
	running bool
	cancel  context.CancelFunc
}

// NewManager creates an empty worker manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Register adds a worker. Workers registered while running start with the next StartAll.
func (m *Manager) Register(w Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.workers = append(m.workers, w)
	m.logger.Info("Worker registered",
		zap.String("worker_name", w.Name()),
		zap.Int("total_workers", len(m.workers)))
}

// StartAll starts every registered worker. A worker failing to start
// stops the ones already running and returns the error.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("workers already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	started := make([]Worker, 0, len(m.workers))
	for _, w := range m.workers {
		if err := w.Start(runCtx); err != nil {
			cancel()
			err = fmt.Errorf("start worker %s: %w", w.Name(), err)
			return multierr.Append(err, stopReverse(started))
		}
		started = append(started, w)
		m.logger.Info("Worker started", zap.String("worker_name", w.Name()))
	}

	m.started = started
	m.cancel = cancel
	m.running = true
	return nil
}

// StopAll stops the running workers, newest first
func (m *Manager) StopAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}

	m.cancel()
	err := stopReverse(m.started)
	if err != nil {
		m.logger.Error("Workers stopped with errors", zap.Error(err))
	} else {
		m.logger.Info("All workers stopped", zap.Int("count", len(m.started)))
	}

	m.started = nil
	m.cancel = nil
	m.running = false
	return err
}

// Count returns the number of registered workers
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workers)
}

// Running reports whether StartAll succeeded without a later StopAll
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func stopReverse(workers []Worker) error {
	var err error
	for i := len(workers) - 1; i >= 0; i-- {
		if stopErr := workers[i].Stop(); stopErr != nil {
			err = multierr.Append(err, fmt.Errorf("stop worker %s: %w", workers[i].Name(), stopErr))
		}
	}
	return err
}
