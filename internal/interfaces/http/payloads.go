package http

import (
	"fmt"
	"time"

	"github.com/garyjia/hr-portal/internal/application/workflow"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
	"github.com/garyjia/hr-portal/pkg/utils"
)

const dateLayout = "2006-01-02"

// RequestPayload is the body of POST and PUT /api/requests
type RequestPayload struct {
	Type        string          `json:"type"`
	Title       string          `json:"title" binding:"max=200"`
	Description string          `json:"description" binding:"max=5000"`
	StartDate   string          `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     string          `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Metadata    entity.Metadata `json:"metadata"`

	// Submit sends the request for approval right away (create only)
	Submit bool `json:"submit"`
}

// Draft converts the payload for the engine
func (p RequestPayload) Draft(requesterID string) (workflow.Draft, error) {
	start, err := parseDate("start_date", p.StartDate)
	if err != nil {
		return workflow.Draft{}, err
	}
	end, err := parseDate("end_date", p.EndDate)
	if err != nil {
		return workflow.Draft{}, err
	}

	return workflow.Draft{
		Type:        entity.RequestType(p.Type),
		Title:       utils.SanitizeString(p.Title),
		Description: utils.SanitizeString(p.Description),
		RequesterID: requesterID,
		StartDate:   start,
		EndDate:     end,
		Metadata:    p.Metadata,
	}, nil
}

func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be formatted %s", domainwf.ErrValidation, field, dateLayout)
	}
	return &t, nil
}

// DecisionPayload is the body of approve and reject calls
type DecisionPayload struct {
	Comment string `json:"comment" binding:"max=2000"`
}

// TemplatePayload is the body of template create and update calls
type TemplatePayload struct {
	WorkflowType string `json:"workflow_type" binding:"required"`
	StepName     string `json:"step_name" binding:"required,max=100"`
	ApproverID   string `json:"approver_id" binding:"required"`
	Order        int    `json:"order" binding:"required,min=1"`
}

// Template converts the payload to an entity
func (p TemplatePayload) Template() entity.WorkflowStepTemplate {
	return entity.WorkflowStepTemplate{
		WorkflowType: entity.RequestType(p.WorkflowType),
		StepName:     utils.SanitizeString(p.StepName),
		ApproverID:   p.ApproverID,
		Order:        p.Order,
	}
}

// UserPayload is the body of user create and update calls
type UserPayload struct {
	Username  string `json:"username" binding:"required,max=64"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Email     string `json:"email" binding:"omitempty,email"`
	Role      string `json:"role" binding:"required"`
	IsActive  *bool  `json:"is_active"`
}

// User converts the payload to an entity; users are active unless stated
func (p UserPayload) User() entity.User {
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return entity.User{
		Username:  p.Username,
		FirstName: utils.SanitizeString(p.FirstName),
		LastName:  utils.SanitizeString(p.LastName),
		Email:     p.Email,
		Role:      entity.Role(p.Role),
		IsActive:  active,
	}
}
