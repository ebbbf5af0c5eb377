package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventDeleter removes flow events recorded before a cutoff
type EventDeleter interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// EventPrunerConfig holds configuration for the event pruner
type EventPrunerConfig struct {
	// Retention is how long an event is kept
	Retention time.Duration

	// Interval between two prune runs
	Interval time.Duration
}

// EventPruner periodically deletes flow events older than the retention
type EventPruner struct {
	config EventPrunerConfig
	events EventDeleter
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	pruned  int64
	lastErr error
}

// NewEventPruner creates an event pruner
func NewEventPruner(config EventPrunerConfig, events EventDeleter, logger *zap.Logger) (*EventPruner, error) {
	if config.Retention <= 0 {
		return nil, fmt.Errorf("event retention must be positive")
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("event prune interval must be positive")
	}

	return &EventPruner{
		config: config,
		events: events,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Name returns the worker name
func (p *EventPruner) Name() string {
	return "EventPruner"
}

// Start prunes once and then on every interval until Stop or ctx is done
func (p *EventPruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return fmt.Errorf("event pruner already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	p.logger.Info("EventPruner started",
		zap.Duration("retention", p.config.Retention),
		zap.Duration("interval", p.config.Interval))

	go p.loop(runCtx, p.done)
	return nil
}

// Stop cancels the loop and waits for an in-flight prune to finish
func (p *EventPruner) Stop() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done

	p.logger.Info("EventPruner stopped", zap.Int64("pruned_total", p.Pruned()))
	return nil
}

// Pruned returns the number of events deleted since creation
func (p *EventPruner) Pruned() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pruned
}

// LastError returns the error of the latest prune run, nil when it succeeded
func (p *EventPruner) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *EventPruner) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		p.prune(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *EventPruner) prune(ctx context.Context) {
	cutoff := p.now().Add(-p.config.Retention).UTC()
	n, err := p.events.DeleteBefore(ctx, cutoff)

	p.mu.Lock()
	p.pruned += n
	p.lastErr = err
	p.mu.Unlock()

	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("Failed to prune flow events", zap.Time("cutoff", cutoff), zap.Error(err))
		}
		return
	}
	if n > 0 {
		p.logger.Info("Pruned flow events", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
}
