package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

// UserService manages the user directory
type UserService interface {
	List(ctx context.Context) ([]*entity.User, error)

	// ListByRole returns active users holding a role
	ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)
	Get(ctx context.Context, id string) (*entity.User, error)
	Create(ctx context.Context, user entity.User) (*entity.User, error)
	Update(ctx context.Context, id string, user entity.User) (*entity.User, error)

	// Delete removes a user together with the templates naming them approver
	Delete(ctx context.Context, id string) error
}

type userServiceImpl struct {
	userRepo     port.UserRepository
	templateRepo port.TemplateRepository
	txManager    port.TransactionManager
	logger       Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo port.UserRepository,
	templateRepo port.TemplateRepository,
	txManager port.TransactionManager,
	logger Logger,
) UserService {
	return &userServiceImpl{
		userRepo:     userRepo,
		templateRepo: templateRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

func (s *userServiceImpl) List(ctx context.Context) ([]*entity.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userServiceImpl) ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domainwf.ErrValidation, role)
	}
	all, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*entity.User
	for _, u := range all {
		if u.Role == role && u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *userServiceImpl) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userServiceImpl) Create(ctx context.Context, user entity.User) (*entity.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if err := validateUser(&user); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		s.logger.Error("Failed to create user", "username", user.Username, "error", err)
		return nil, err
	}
	s.logger.Info("User created", "id", user.ID, "username", user.Username, "role", user.Role)
	return &user, nil
}

func (s *userServiceImpl) Update(ctx context.Context, id string, user entity.User) (*entity.User, error) {
	existing, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.ID = id
	user.CreatedAt = existing.CreatedAt
	if err := validateUser(&user); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, &user); err != nil {
		s.logger.Error("Failed to update user", "id", id, "error", err)
		return nil, err
	}
	s.logger.Info("User updated", "id", id)
	return &user, nil
}

func (s *userServiceImpl) Delete(ctx context.Context, id string) error {
	var removed int
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.Delete(txCtx, id); err != nil {
			return err
		}
		n, err := s.templateRepo.DeleteByApprover(txCtx, id)
		if err != nil {
			return fmt.Errorf("delete templates of %s: %w", id, err)
		}
		removed = n
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to delete user", "id", id, "error", err)
		return err
	}
	s.logger.Info("User deleted", "id", id, "templates_removed", removed)
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateUser(u *entity.User) error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)

	var problems []string
	if u.Username == "" {
		problems = append(problems, "username is required")
	}
	if !u.Role.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown role %q", u.Role))
	}
	if err := validate.Var(u.Email, "omitempty,email"); err != nil {
		problems = append(problems, fmt.Sprintf("invalid email %q", u.Email))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domainwf.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}
