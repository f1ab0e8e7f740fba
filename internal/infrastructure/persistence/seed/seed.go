// Package seed loads the initial user directory and validator chains into an
// empty store.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// Logger interface for seeding
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
}

// Users returns the default user directory
func Users(now time.Time) []*entity.User {
	user := func(id, username, first, last string, role entity.Role) *entity.User {
		return &entity.User{
			ID:        id,
			Username:  username,
			FirstName: first,
			LastName:  last,
			Email:     username + "@example.com",
			Role:      role,
			IsActive:  true,
			CreatedAt: now,
		}
	}
	return []*entity.User{
		user("admin1", "admin", "Admin", "Portal", entity.RoleAdmin),
		user("manager1", "sophie.martin", "Sophie", "Martin", entity.RoleManager),
		user("hr1", "thomas.leroy", "Thomas", "Leroy", entity.RoleHR),
		user("training1", "marie.dubois", "Marie", "Dubois", entity.RoleTraining),
		user("budget1", "jean.dupont", "Jean", "Dupont", entity.RoleBudget),
		user("director1", "pierre.durand", "Pierre", "Durand", entity.RoleDirector),
		user("user1", "john.doe", "John", "Doe", entity.RoleEmployee),
	}
}

// Templates returns the default validator chains
func Templates() []*entity.WorkflowStepTemplate {
	tpl := func(id string, typ entity.RequestType, name, approverID, approverName string, order int) *entity.WorkflowStepTemplate {
		return &entity.WorkflowStepTemplate{
			ID:           id,
			WorkflowType: typ,
			StepName:     name,
			ApproverID:   approverID,
			ApproverName: approverName,
			Order:        order,
		}
	}
	return []*entity.WorkflowStepTemplate{
		tpl("v1", entity.RequestTypeLeave, "Validation Manager", "manager1", "Sophie Martin", 1),
		tpl("v2", entity.RequestTypeLeave, "Validation RH", "hr1", "Thomas Leroy", 2),
		tpl("v3", entity.RequestTypeTraining, "Validation Manager", "manager1", "Sophie Martin", 1),
		tpl("v4", entity.RequestTypeTraining, "Validation Formation", "training1", "Marie Dubois", 2),
		tpl("v5", entity.RequestTypeTraining, "Validation Budgétaire", "budget1", "Jean Dupont", 3),
		tpl("v6", entity.RequestTypeCertificate, "Validation RH", "hr1", "Thomas Leroy", 1),
		tpl("v7", entity.RequestTypeComplaint, "Validation RH", "hr1", "Thomas Leroy", 1),
		tpl("v8", entity.RequestTypeComplaint, "Validation Direction", "director1", "Pierre Durand", 2),
	}
}

// Seeder writes the default data set
type Seeder struct {
	users     port.UserRepository
	templates port.TemplateRepository
	txManager port.TransactionManager
	logger    Logger
	now       func() time.Time
}

// NewSeeder creates a seeder over the given repositories
func NewSeeder(users port.UserRepository, templates port.TemplateRepository, txManager port.TransactionManager, logger Logger) *Seeder {
	return &Seeder{
		users:     users,
		templates: templates,
		txManager: txManager,
		logger:    logger,
		now:       time.Now,
	}
}

// Run seeds the store when the user directory is empty. It reports whether
// anything was written.
func (s *Seeder) Run(ctx context.Context) (bool, error) {
	existing, err := s.users.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list users: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info("Store already populated, skipping seed", "users", len(existing))
		return false, nil
	}

	users := Users(s.now().UTC())
	templates := Templates()

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		for _, u := range users {
			if err := s.users.Create(ctx, u); err != nil {
				return fmt.Errorf("failed to seed user %s: %w", u.ID, err)
			}
		}
		for _, t := range templates {
			if err := s.templates.Create(ctx, t); err != nil {
				return fmt.Errorf("failed to seed template %s: %w", t.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	s.logger.Info("Seeded store", "users", len(users), "templates", len(templates))
	return true, nil
}
