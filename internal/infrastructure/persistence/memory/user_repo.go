package memory

import (
	"context"
	"fmt"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

// UserRepository stores the user directory in memory
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a user repository over the store
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.users[user.ID]; exists {
		return fmt.Errorf("%w: user %s already exists", domainwf.ErrValidation, user.ID)
	}
	for _, u := range r.store.users {
		if u.Username == user.Username {
			return fmt.Errorf("%w: username %s is taken", domainwf.ErrValidation, user.Username)
		}
	}
	c := *user
	r.store.users[user.ID] = &c
	r.store.userOrder = append(r.store.userOrder, user.ID)
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.users[user.ID]; !exists {
		return fmt.Errorf("%w: user %s", domainwf.ErrNotFound, user.ID)
	}
	for _, u := range r.store.users {
		if u.ID != user.ID && u.Username == user.Username {
			return fmt.Errorf("%w: username %s is taken", domainwf.ErrValidation, user.Username)
		}
	}
	c := *user
	r.store.users[user.ID] = &c
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.users[id]; !exists {
		return fmt.Errorf("%w: user %s", domainwf.ErrNotFound, id)
	}
	delete(r.store.users, id)

	order := r.store.userOrder[:0:0]
	for _, uid := range r.store.userOrder {
		if uid != id {
			order = append(order, uid)
		}
	}
	r.store.userOrder = order
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", domainwf.ErrNotFound, id)
	}
	c := *u
	return &c, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*entity.User, 0, len(r.store.userOrder))
	for _, id := range r.store.userOrder {
		c := *r.store.users[id]
		out = append(out, &c)
	}
	return out, nil
}

var _ port.UserRepository = (*UserRepository)(nil)
