package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/dispatcher"
	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/application/service"
	"github.com/garyjia/hr-portal/internal/application/workflow"
	"github.com/garyjia/hr-portal/internal/config"
	"github.com/garyjia/hr-portal/internal/infrastructure/worker"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure
	storage  *StorageBundle
	notifier port.Notifier
	registry *prometheus.Registry
	metrics  *workflow.Metrics

	// Application
	dispatcher dispatcher.Dispatcher
	workflow   workflow.Engine
	services   *ServiceBundle
	workers    *worker.WorkerManager

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Requests  port.RequestRepository
	Templates port.TemplateRepository
	Users     port.UserRepository
	History   port.HistoryRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Templates     service.TemplateService
	Users         service.UserService
	Queries       service.QueryService
	Notifications service.NotificationService
	Export        service.ExportService
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
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
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

// Start initializes all components in dependency order:
// 1. Storage and repositories
// 2. Seed data
// 3. Notifier and metrics
// 4. Event dispatcher and workflow engine
// 5. Application services
// 6. Background workers
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization",
		zap.String("storage_driver", c.config.Storage.Driver))

	storage, err := ProvideStorage(&c.config.Storage, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.storage = storage
	c.logger.Info("Storage initialized")

	if c.config.Seed.Enabled {
		if _, err := ProvideSeeder(c.storage, c.logger).Run(ctx); err != nil {
			c.closeStorage()
			return fmt.Errorf("failed to seed storage: %w", err)
		}
	}

	c.notifier = ProvideNotifier(&c.config.Lark, c.logger)
	c.registry, c.metrics = ProvideMetrics()

	disp, err := ProvideDispatcher(c.logger)
	if err != nil {
		c.closeStorage()
		return err
	}
	c.dispatcher = disp

	engine, err := ProvideWorkflowEngine(&WorkflowDeps{
		Storage:    c.storage,
		Dispatcher: c.dispatcher,
		Metrics:    c.metrics,
		Logger:     c.logger,
	})
	if err != nil {
		c.closeStorage()
		return err
	}
	c.workflow = engine
	c.logger.Info("Dispatcher and workflow engine initialized")

	services, err := ProvideServices(&ServiceDeps{
		Storage:    c.storage,
		Notifier:   c.notifier,
		Dispatcher: c.dispatcher,
		Logger:     c.logger,
	})
	if err != nil {
		c.closeStorage()
		return err
	}
	c.services = services
	c.logger.Info("Application services initialized")

	c.workers = ProvideWorkers(&c.config.Reminder, c.services, c.dispatcher, c.logger)
	if err := c.workers.StartAll(ctx); err != nil {
		c.closeStorage()
		return fmt.Errorf("failed to start workers: %w", err)
	}

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close releases resources in reverse initialization order. In-flight
// event handlers are awaited before the database closes.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Swap(true) {
		return nil
	}
	c.ready.Store(false)

	c.logger.Info("Closing container")

	var errs []error
	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			c.logger.Error("Failed to stop workers", zap.Error(err))
			errs = append(errs, err)
		}
	}

	if c.dispatcher != nil {
		// no new notifications once shutdown starts; queued ones still drain
		if c.services != nil {
			c.services.Notifications.Unregister(c.dispatcher)
		}
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, err)
		} else {
			c.logger.Info("Dispatcher closed")
		}
	}

	if err := c.closeStorage(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("close container: %d errors, first: %w", len(errs), errs[0])
	}

	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) closeStorage() error {
	if c.storage == nil || c.storage.Database == nil {
		return nil
	}
	if err := c.storage.Database.Close(); err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
		return err
	}
	c.logger.Info("Database closed")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	switch {
	case c.storage == nil:
		status.Components["storage"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	case c.storage.Database != nil:
		if err := c.storage.Database.Ping(); err != nil {
			status.Components["storage"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("ping failed: %v", err),
			}
			status.Overall = false
		} else {
			status.Components["storage"] = ComponentHealth{Healthy: true, Message: config.DriverSQLite}
		}
	default:
		status.Components["storage"] = ComponentHealth{Healthy: true, Message: config.DriverMemory}
	}

	if c.dispatcher != nil && !c.closed.Load() {
		status.Components["dispatcher"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["dispatcher"] = ComponentHealth{Healthy: false, Message: "not running"}
		status.Overall = false
	}

	if c.workers != nil {
		running := len(c.workers.Running())
		health := ComponentHealth{
			Healthy: running == c.workers.GetWorkerCount(),
			Message: fmt.Sprintf("%d/%d running", running, c.workers.GetWorkerCount()),
		}
		if !health.Healthy && !c.closed.Load() {
			status.Overall = false
		}
		status.Components["workers"] = health
	}

	return status
}

// Getters for accessing container components

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	if c.storage == nil {
		return nil
	}
	return c.storage.Repositories
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() port.TransactionManager {
	if c.storage == nil {
		return nil
	}
	return c.storage.TxManager
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// WorkflowEngine returns the workflow engine.
func (c *Container) WorkflowEngine() workflow.Engine {
	return c.workflow
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Registry returns the Prometheus registry.
func (c *Container) Registry() *prometheus.Registry {
	return c.registry
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *config.Config {
	return c.config
}
