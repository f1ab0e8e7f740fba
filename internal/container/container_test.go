package container

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/workflow"
	"github.com/garyjia/hr-portal/internal/config"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	"github.com/garyjia/hr-portal/internal/domain/event"
)

func testConfig(driver, path string) *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: 8080},
		Storage: config.StorageConfig{Driver: driver, Path: path, MaxOpenConns: 1, MaxIdleConns: 1},
		Logger:  config.LoggerConfig{Level: "info", Format: "json"},
		Seed:    config.SeedConfig{Enabled: true},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(testConfig(config.DriverMemory, ""), nil)
	assert.Error(t, err)

	_, err = NewContainer(testConfig("postgres", ""), zap.NewNop())
	assert.ErrorContains(t, err, "invalid config")
}

func runLeaveChain(t *testing.T, c *Container) {
	t.Helper()
	ctx := context.Background()

	req, err := c.WorkflowEngine().CreateRequest(ctx, workflow.Draft{
		Type:        entity.RequestTypeLeave,
		Title:       "Congés annuels",
		Description: "Vacances",
		RequesterID: "user1",
		StartDate:   timePtr(2024, 10, 15),
		EndDate:     timePtr(2024, 10, 20),
		Metadata:    entity.Metadata{Leave: &entity.LeaveDetails{LeaveType: "paid"}},
	}, true)
	require.NoError(t, err)
	require.Len(t, req.Steps, 2)

	pending, err := c.Services().Queries.PendingFor(ctx, "manager1")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	req, err = c.WorkflowEngine().ApproveStep(ctx, req.ID, req.Steps[0].ID, "manager1", "ok")
	require.NoError(t, err)
	req, err = c.WorkflowEngine().ApproveStep(ctx, req.ID, req.Steps[1].ID, "hr1", "ok")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusApproved, req.Status)
}

func TestContainer_MemoryLifecycle(t *testing.T) {
	c, err := NewContainer(testConfig(config.DriverMemory, ""), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(context.Background()), "second start")

	health := c.Health()
	assert.True(t, health.Overall)
	assert.Equal(t, config.DriverMemory, health.Components["storage"].Message)

	assert.Equal(t, []string{"notify-approver"}, c.Dispatcher().Handlers(event.TypeStepAssigned))

	runLeaveChain(t, c)

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "hrportal_workflow_transitions_total")

	require.NoError(t, c.Close())
	assert.Empty(t, c.Dispatcher().Handlers(event.TypeStepAssigned), "notifications unsubscribe on close")
	assert.False(t, c.Ready())
	assert.False(t, c.Health().Overall)
	assert.NoError(t, c.Close(), "close is idempotent")
	assert.Error(t, c.Start(context.Background()))
}

func TestContainer_ReminderWorker(t *testing.T) {
	cfg := testConfig(config.DriverMemory, "")
	cfg.Reminder = config.ReminderConfig{Enabled: true, Interval: time.Hour, After: 24 * time.Hour}

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))

	health := c.Health()
	assert.True(t, health.Overall)
	assert.Equal(t, "1/1 running", health.Components["workers"].Message)
	require.NoError(t, c.Close())
}

func TestContainer_SQLiteSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.db")
	ctx := context.Background()

	c, err := NewContainer(testConfig(config.DriverSQLite, path), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(ctx))
	assert.Equal(t, config.DriverSQLite, c.Health().Components["storage"].Message)
	runLeaveChain(t, c)
	require.NoError(t, c.Close())

	reopened, err := NewContainer(testConfig(config.DriverSQLite, path), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, reopened.Start(ctx))
	defer reopened.Close()

	users, err := reopened.Services().Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 7, "seed runs once")

	approved, err := reopened.Services().Queries.ByStatus(ctx, "approved")
	require.NoError(t, err)
	assert.Len(t, approved, 1)
}

func timePtr(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}
