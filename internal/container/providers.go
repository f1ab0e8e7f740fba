// Package container provides dependency injection and lifecycle management
// for the HR portal following Clean Architecture principles.
package container

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/dispatcher"
	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/application/service"
	"github.com/garyjia/hr-portal/internal/application/workflow"
	"github.com/garyjia/hr-portal/internal/config"
	"github.com/garyjia/hr-portal/internal/infrastructure/export"
	infraLark "github.com/garyjia/hr-portal/internal/infrastructure/external/lark"
	"github.com/garyjia/hr-portal/internal/infrastructure/persistence/memory"
	"github.com/garyjia/hr-portal/internal/infrastructure/persistence/repository"
	"github.com/garyjia/hr-portal/internal/infrastructure/persistence/seed"
	"github.com/garyjia/hr-portal/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/hr-portal/internal/infrastructure/worker"
	"github.com/garyjia/hr-portal/pkg/database"
	"github.com/garyjia/hr-portal/pkg/utils"
)

// StorageBundle holds the repositories of the selected driver and the
// transaction manager they share.
type StorageBundle struct {
	Repositories *RepositoryBundle
	TxManager    port.TransactionManager

	// Database is nil for the memory driver
	Database *database.DB
}

// ProvideStorage opens the configured persistence driver. The sqlite driver
// runs pending migrations before returning.
func ProvideStorage(cfg *config.StorageConfig, logger *zap.Logger) (*StorageBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	switch cfg.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		return &StorageBundle{
			Repositories: &RepositoryBundle{
				Requests:  memory.NewRequestRepository(store),
				Templates: memory.NewTemplateRepository(store),
				Users:     memory.NewUserRepository(store),
				History:   memory.NewHistoryRepository(store),
			},
			TxManager: memory.NewTxManager(store),
		}, nil

	case config.DriverSQLite:
		db, err := database.New(database.Config{
			Path:            cfg.Path,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		}, logger)
		if err != nil {
			return nil, err
		}

		if err := database.NewMigrator(db, logger).Run(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		txManager := sqlite.NewDB(db.DB, logger)
		return &StorageBundle{
			Repositories: &RepositoryBundle{
				Requests:  repository.NewRequestRepository(txManager, logger),
				Templates: repository.NewTemplateRepository(txManager, logger),
				Users:     repository.NewUserRepository(txManager, logger),
				History:   repository.NewHistoryRepository(txManager, logger),
			},
			TxManager: txManager,
			Database:  db,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// ProvideSeeder creates the seeder for the default users and chains
func ProvideSeeder(storage *StorageBundle, logger *zap.Logger) *seed.Seeder {
	return seed.NewSeeder(
		storage.Repositories.Users,
		storage.Repositories.Templates,
		storage.TxManager,
		utils.NewKVLogger(logger),
	)
}

// ProvideNotifier returns a Lark notifier when credentials are configured
// and a log-only notifier otherwise.
func ProvideNotifier(cfg *config.LarkConfig, logger *zap.Logger) port.Notifier {
	larkCfg := infraLark.Config{
		AppID:     cfg.AppID,
		AppSecret: cfg.AppSecret,
		PortalURL: cfg.PortalURL,
	}
	if !larkCfg.Enabled() {
		logger.Info("Lark credentials not configured, notifications are logged only")
		return infraLark.NewLogNotifier(logger)
	}
	return infraLark.NewNotifier(larkCfg, logger)
}

// ProvideMetrics creates the Prometheus registry with runtime collectors and
// the workflow counters.
func ProvideMetrics() (*prometheus.Registry, *workflow.Metrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry, workflow.NewMetrics(registry)
}

// ProvideDispatcher creates the event dispatcher
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return dispatcher.NewDispatcher(dispatcher.WithLogger(utils.NewKVLogger(logger))), nil
}

// WorkflowDeps holds dependencies for the workflow engine
type WorkflowDeps struct {
	Storage    *StorageBundle
	Dispatcher dispatcher.Dispatcher
	Metrics    *workflow.Metrics
	Logger     *zap.Logger
}

// ProvideWorkflowEngine creates the workflow engine
func ProvideWorkflowEngine(deps *WorkflowDeps) (workflow.Engine, error) {
	if deps == nil || deps.Storage == nil {
		return nil, fmt.Errorf("workflow dependencies are required")
	}
	repos := deps.Storage.Repositories

	return workflow.NewEngine(
		repos.Requests,
		repos.Templates,
		repos.Users,
		repos.History,
		deps.Storage.TxManager,
		workflow.WithDispatcher(deps.Dispatcher),
		workflow.WithMetrics(deps.Metrics),
		workflow.WithLogger(utils.NewKVLogger(deps.Logger)),
	), nil
}

// ServiceDeps holds dependencies for application services
type ServiceDeps struct {
	Storage    *StorageBundle
	Notifier   port.Notifier
	Dispatcher dispatcher.Dispatcher
	Logger     *zap.Logger
}

// ProvideServices creates the application services and subscribes the
// notification handlers to the dispatcher.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Storage == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}

	repos := deps.Storage.Repositories
	logger := utils.NewKVLogger(deps.Logger)

	queries := service.NewQueryService(repos.Requests, repos.History)
	notifications := service.NewNotificationService(repos.Requests, repos.Users, deps.Notifier, logger)
	if deps.Dispatcher != nil {
		notifications.Register(deps.Dispatcher)
	}

	return &ServiceBundle{
		Templates:     service.NewTemplateService(repos.Templates, repos.Users, deps.Storage.TxManager, logger),
		Users:         service.NewUserService(repos.Users, repos.Templates, deps.Storage.TxManager, logger),
		Queries:       queries,
		Notifications: notifications,
		Export:        service.NewExportService(queries, export.NewXLSXExporter(deps.Logger), logger),
	}, nil
}

// ProvideWorkers registers the background workers enabled in configuration.
// The returned manager may hold no workers.
func ProvideWorkers(cfg *config.ReminderConfig, services *ServiceBundle, events dispatcher.Dispatcher, logger *zap.Logger) *worker.WorkerManager {
	manager := worker.NewWorkerManager(logger)
	if cfg.Enabled {
		manager.Register(worker.NewReminderWorker(
			services.Queries,
			events,
			worker.ReminderConfig{Interval: cfg.Interval, After: cfg.After},
			logger,
		))
	}
	return manager
}
