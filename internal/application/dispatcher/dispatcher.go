// Package dispatcher routes flow events to in-process subscribers.
package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/garyjia/caseflow/internal/domain/event"
)

// Dispatcher routes events to registered handlers
type Dispatcher interface {
	// Subscribe registers a named handler for an event type
	Subscribe(eventType event.Type, name string, handler Handler)

	// Dispatch runs every handler of the event type in order and stops at the first error
	Dispatch(ctx context.Context, evt *event.Event) error

	// Publish hands the event to its handlers in the background.
	// Handlers keep running after ctx is cancelled.
	Publish(ctx context.Context, evt *event.Event)

	// Handlers returns the handler names registered for an event type
	Handlers(eventType event.Type) []string

	// Close rejects new events and waits for running handlers
	Close() error
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type eventDispatcher struct {
	mu            sync.RWMutex
	subscriptions map[event.Type][]subscription
	logger        Logger

	wg     sync.WaitGroup
	closed bool
}

// Option configures the dispatcher
type Option func(*eventDispatcher)

// WithLogger sets a logger for the dispatcher
func WithLogger(logger Logger) Option {
	return func(d *eventDispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(opts ...Option) Dispatcher {
	d := &eventDispatcher{
		subscriptions: make(map[event.Type][]subscription),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Subscribe implements Dispatcher
func (d *eventDispatcher) Subscribe(eventType event.Type, name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.subscriptions[eventType] = append(d.subscriptions[eventType], subscription{name: name, handler: handler})

	d.info("Handler registered", "event_type", eventType, "handler_name", name)
}

// Dispatch implements Dispatcher
func (d *eventDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	subs, ok := d.snapshot(evt.Type)
	if !ok {
		return fmt.Errorf("dispatcher is closed")
	}

	for _, sub := range subs {
		if err := d.safeExecute(ctx, evt, sub); err != nil {
			d.error("Handler error",
				"event_type", evt.Type,
				"event_id", evt.ID,
				"handler_name", sub.name,
				"error", err)
			return fmt.Errorf("handler %s failed: %w", sub.name, err)
		}
	}

	return nil
}

// Publish implements Dispatcher
func (d *eventDispatcher) Publish(ctx context.Context, evt *event.Event) {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		d.error("Dropping event, dispatcher is closed",
			"event_type", evt.Type,
			"event_id", evt.ID)
		return
	}
	subs := append([]subscription(nil), d.subscriptions[evt.Type]...)
	// registered under the lock so Close cannot start waiting in between
	d.wg.Add(len(subs))
	d.mu.RUnlock()

	ctx = context.WithoutCancel(ctx)
	for _, sub := range subs {
		go func(sub subscription) {
			defer d.wg.Done()

			if err := d.safeExecute(ctx, evt, sub); err != nil {
				d.error("Async handler error",
					"event_type", evt.Type,
					"event_id", evt.ID,
					"handler_name", sub.name,
					"error", err)
			}
		}(sub)
	}
}

// Handlers implements Dispatcher
func (d *eventDispatcher) Handlers(eventType event.Type) []string {
	subs, _ := d.snapshot(eventType)
	names := make([]string, len(subs))
	for i, sub := range subs {
		names[i] = sub.name
	}
	return names
}

// Close implements Dispatcher
func (d *eventDispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return fmt.Errorf("dispatcher already closed")
	}
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
	d.info("Dispatcher closed")
	return nil
}

// snapshot copies the subscriptions of an event type; ok is false once closed
func (d *eventDispatcher) snapshot(eventType event.Type) ([]subscription, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]subscription(nil), d.subscriptions[eventType]...), !d.closed
}

// safeExecute runs a handler with panic recovery
func (d *eventDispatcher) safeExecute(ctx context.Context, evt *event.Event, sub subscription) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return sub.handler(ctx, evt)
}

func (d *eventDispatcher) info(msg string, keysAndValues ...interface{}) {
	if d.logger != nil {
		d.logger.Info(msg, keysAndValues...)
	}
}

func (d *eventDispatcher) error(msg string, keysAndValues ...interface{}) {
	if d.logger != nil {
		d.logger.Error(msg, keysAndValues...)
	}
}
