package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/hr-portal/internal/domain/entity"
	"github.com/garyjia/hr-portal/internal/infrastructure/persistence/memory"
)

var timeZero time.Time

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{}) {}

func newSeeder() (*Seeder, *memory.Store) {
	store := memory.NewStore()
	return NewSeeder(
		memory.NewUserRepository(store),
		memory.NewTemplateRepository(store),
		memory.NewTxManager(store),
		nopLogger{},
	), store
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	s, store := newSeeder()

	seeded, err := s.Run(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	users, err := memory.NewUserRepository(store).List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 7)
	assert.Equal(t, "admin1", users[0].ID)

	templates := memory.NewTemplateRepository(store)
	training, err := templates.ListByType(ctx, entity.RequestTypeTraining)
	require.NoError(t, err)
	require.Len(t, training, 3)
	assert.Equal(t, "manager1", training[0].ApproverID)
	assert.Equal(t, "training1", training[1].ApproverID)
	assert.Equal(t, "budget1", training[2].ApproverID)

	certificate, err := templates.ListByType(ctx, entity.RequestTypeCertificate)
	require.NoError(t, err)
	require.Len(t, certificate, 1)
	assert.Equal(t, "hr1", certificate[0].ApproverID)
}

func TestSeeder_RunSkipsPopulatedStore(t *testing.T) {
	ctx := context.Background()
	s, store := newSeeder()

	_, err := s.Run(ctx)
	require.NoError(t, err)

	seeded, err := s.Run(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	all, err := memory.NewTemplateRepository(store).List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 8)
}

func TestTemplates_ApproversExist(t *testing.T) {
	ids := map[string]string{}
	for _, u := range Users(timeZero) {
		ids[u.ID] = u.FullName()
	}
	for _, tpl := range Templates() {
		name, ok := ids[tpl.ApproverID]
		require.True(t, ok, "template %s references unknown approver", tpl.ID)
		assert.Equal(t, name, tpl.ApproverName)
	}
}
