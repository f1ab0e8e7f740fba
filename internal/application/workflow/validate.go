package workflow

import (
	"fmt"
	"strings"

	"github.com/garyjia/hr-portal/internal/domain/entity"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

// validateDraft checks the fields every request needs. Submission adds the
// description and, for leave, both dates.
func validateDraft(d Draft, submitting bool) error {
	var problems []string

	if d.Type == "" {
		problems = append(problems, "type is required")
	}
	if strings.TrimSpace(d.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(d.RequesterID) == "" {
		problems = append(problems, "requester is required")
	}
	if d.StartDate != nil && d.EndDate != nil && d.EndDate.Before(*d.StartDate) {
		problems = append(problems, "end date is before start date")
	}
	if submitting {
		if strings.TrimSpace(d.Description) == "" {
			problems = append(problems, "description is required")
		}
		if d.Type == entity.RequestTypeLeave && (d.StartDate == nil || d.EndDate == nil) {
			problems = append(problems, "leave requests need a start and an end date")
		}
	}
	if err := d.Metadata.Validate(d.Type); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domainwf.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// validateRequest re-checks a stored draft before it is submitted
func validateRequest(req *entity.WorkflowRequest) error {
	return validateDraft(Draft{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		RequesterID: req.RequesterID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Metadata:    req.Metadata,
	}, true)
}
