package container

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/garyjia/caseflow/internal/application/dispatcher"
	"github.com/garyjia/caseflow/internal/application/port"
	"github.com/garyjia/caseflow/internal/application/service"
	"github.com/garyjia/caseflow/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/caseflow/internal/infrastructure/worker"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in order and torn down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure
	sqlDB        *sql.DB
	db           *sqlite.DB
	repositories *RepositoryBundle

	// Application
	dispatcher dispatcher.Dispatcher
	services   *ServiceBundle
	workers    *worker.Manager

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Case     port.CaseRepository
	History  port.CaseHistoryRepository
	WorkItem port.WorkItemRepository
	Event    port.EventRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Flow  service.FlowService
	Item  service.ItemService
	Event service.EventService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes the database, repositories and services, then starts
// the background workers. Workers outlive ctx and run until Close.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	if err := c.initServices(); err != nil {
		return multierr.Append(
			fmt.Errorf("failed to initialize services: %w", err),
			c.sqlDB.Close(),
		)
	}
	c.logger.Info("Application services initialized")

	if err := c.initWorkers(ctx); err != nil {
		return multierr.Combine(
			fmt.Errorf("failed to start workers: %w", err),
			c.dispatcher.Close(),
			c.sqlDB.Close(),
		)
	}
	c.logger.Info("Background workers started", zap.Int("count", c.workers.Count()))

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var err error
	if c.workers != nil {
		if stopErr := c.workers.StopAll(); stopErr != nil {
			err = multierr.Append(err, fmt.Errorf("stop workers: %w", stopErr))
		}
	}

	if c.dispatcher != nil {
		// drain pending event writes while the database is still open
		if closeErr := c.dispatcher.Close(); closeErr != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(closeErr))
			err = multierr.Append(err, fmt.Errorf("close dispatcher: %w", closeErr))
		}
	}

	if c.sqlDB != nil {
		if closeErr := c.sqlDB.Close(); closeErr != nil {
			c.logger.Error("Failed to close database", zap.Error(closeErr))
			err = multierr.Append(err, fmt.Errorf("close database: %w", closeErr))
		} else {
			c.logger.Info("Database closed")
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if err != nil {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(multierr.Errors(err))))
		return err
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	switch {
	case c.sqlDB == nil:
		status.Components["database"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	default:
		if err := c.sqlDB.PingContext(ctx); err != nil {
			status.Components["database"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("ping failed: %v", err),
			}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	}

	if c.workers != nil && c.workers.Running() {
		status.Components["workers"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["workers"] = ComponentHealth{Healthy: false, Message: "not running"}
		status.Overall = false
	}

	if c.services != nil {
		status.Components["services"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["services"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	return status
}

func (c *Container) initDatabase() error {
	dbBundle, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return err
	}

	c.sqlDB = dbBundle.SqlDB
	c.db = dbBundle.TransactionMgr

	repos, err := ProvideRepositories(c.sqlDB, c.logger)
	if err != nil {
		return multierr.Append(err, c.sqlDB.Close())
	}

	c.repositories = repos
	return nil
}

func (c *Container) initServices() error {
	d, err := ProvideDispatcher(c.repositories.Event, c.logger)
	if err != nil {
		return err
	}

	services, err := ProvideServices(&ServiceDeps{
		Repos:     c.repositories,
		TxManager: c.db,
		Publisher: d,
		Flow:      &c.config.Flow,
		Logger:    c.logger,
	})
	if err != nil {
		return multierr.Append(err, d.Close())
	}

	c.dispatcher = d
	c.services = services
	return nil
}

func (c *Container) initWorkers(ctx context.Context) error {
	workers, err := ProvideWorkers(&c.config.Events, c.repositories.Event, c.logger)
	if err != nil {
		return err
	}
	if err := workers.StartAll(context.WithoutCancel(ctx)); err != nil {
		return err
	}

	c.workers = workers
	return nil
}

// DB returns the transaction manager.
func (c *Container) DB() port.TransactionManager {
	return c.db
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// ServiceLogger returns the container's logger behind the narrow
// key/value interface used by the application and HTTP layers.
func (c *Container) ServiceLogger() service.Logger {
	return &zapLoggerAdapter{logger: c.logger}
}

// zapLoggerAdapter adapts zap.Logger to the service.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, isErr := keysAndValues[i+1].(error); isErr {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
