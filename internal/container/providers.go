package container

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/garyjia/caseflow/internal/application/dispatcher"
	"github.com/garyjia/caseflow/internal/application/port"
	"github.com/garyjia/caseflow/internal/application/service"
	"github.com/garyjia/caseflow/internal/domain/event"
	"github.com/garyjia/caseflow/internal/infrastructure/persistence/repository"
	"github.com/garyjia/caseflow/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/caseflow/internal/infrastructure/worker"
	"github.com/garyjia/caseflow/migrations"
	"github.com/garyjia/caseflow/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	SqlDB          *sql.DB
	TransactionMgr *sqlite.DB
}

// ProvideDatabase opens the database and applies pending migrations.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if !cfg.SkipMigrations {
		if err := database.NewMigrator(db, logger).Run(migrations.FS); err != nil {
			return nil, multierr.Append(
				fmt.Errorf("failed to run migrations: %w", err),
				db.Close(),
			)
		}
	}

	return &DatabaseBundle{
		SqlDB:          db.DB,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Case:     repository.NewCaseRepository(sqlDB, logger),
		History:  repository.NewCaseHistoryRepository(sqlDB, logger),
		WorkItem: repository.NewWorkItemRepository(sqlDB, logger),
		Event:    repository.NewEventRepository(sqlDB, logger),
	}, nil
}

// ProvideDispatcher creates the event dispatcher and subscribes the handler
// that stores every flow event.
func ProvideDispatcher(events port.EventRepository, logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if events == nil {
		return nil, fmt.Errorf("event repository is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	d := dispatcher.NewDispatcher(dispatcher.WithLogger(&zapLoggerAdapter{logger: logger.Named("dispatcher")}))

	store := func(ctx context.Context, evt *event.Event) error {
		return events.Append(ctx, evt)
	}
	d.Subscribe(event.TypeItemCompleted, "event-store", store)
	d.Subscribe(event.TypeNextResolved, "event-store", store)

	return d, nil
}

// ProvideWorkers creates the background worker manager. The event pruner
// is registered only when a retention is configured.
func ProvideWorkers(cfg *EventsConfig, events port.EventRepository, logger *zap.Logger) (*worker.Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("events config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	manager := worker.NewManager(logger.Named("worker"))
	if cfg.Retention == 0 {
		return manager, nil
	}

	pruner, err := worker.NewEventPruner(worker.EventPrunerConfig{
		Retention: cfg.Retention,
		Interval:  cfg.PruneInterval,
	}, events, logger.Named("worker"))
	if err != nil {
		return nil, err
	}
	manager.Register(pruner)

	return manager, nil
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Repos     *RepositoryBundle
	TxManager port.TransactionManager
	Publisher port.EventPublisher
	Flow      *FlowConfig
	Logger    *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.TxManager == nil {
		return nil, fmt.Errorf("transaction manager is required")
	}
	if deps.Flow == nil {
		return nil, fmt.Errorf("flow config is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	logger := &zapLoggerAdapter{logger: deps.Logger.Named("service")}

	flowService, err := service.NewFlowService(
		deps.Repos.Case,
		deps.Repos.History,
		deps.Repos.WorkItem,
		deps.Publisher,
		service.FlowOptions{
			PollInterval: deps.Flow.PollInterval,
			MaxDepth:     deps.Flow.MaxDepth,
			MaxTimeout:   deps.Flow.MaxTimeout,
		},
		logger,
	)
	if err != nil {
		return nil, err
	}

	return &ServiceBundle{
		Flow:  flowService,
		Item:  service.NewItemService(deps.Repos.WorkItem, deps.TxManager, deps.Publisher, logger),
		Event: service.NewEventService(deps.Repos.Event),
	}, nil
}
