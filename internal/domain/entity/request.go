package entity

import (
	"fmt"
	"time"
)

// RequestType identifies the kind of HR request and selects its approval chain
type RequestType string

const (
	RequestTypeLeave       RequestType = "leave"
	RequestTypeTraining    RequestType = "training"
	RequestTypeCertificate RequestType = "certificate"
	RequestTypeComplaint   RequestType = "complaint"
)

// RequestTypes lists every workflow type in display order
var RequestTypes = []RequestType{
	RequestTypeLeave,
	RequestTypeTraining,
	RequestTypeCertificate,
	RequestTypeComplaint,
}

// IsValid returns true if the type is one of the known workflow types
func (t RequestType) IsValid() bool {
	switch t {
	case RequestTypeLeave, RequestTypeTraining, RequestTypeCertificate, RequestTypeComplaint:
		return true
	default:
		return false
	}
}

// String returns the string representation of the type
func (t RequestType) String() string {
	return string(t)
}

// RequestStatus is the overall status of a workflow request
type RequestStatus string

const (
	RequestStatusDraft      RequestStatus = "draft"
	RequestStatusSubmitted  RequestStatus = "submitted"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusApproved   RequestStatus = "approved"
	RequestStatusRejected   RequestStatus = "rejected"
)

// IsTerminal returns true once no further transition can happen
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// IsPending returns true while the request waits on an approver
func (s RequestStatus) IsPending() bool {
	return s == RequestStatusSubmitted || s == RequestStatusInProgress
}

// StepStatus is the status of a single approval step
type StepStatus string

const (
	StepStatusPending  StepStatus = "pending"
	StepStatusApproved StepStatus = "approved"
	StepStatusRejected StepStatus = "rejected"
)

// WorkflowStep is one approval unit materialized from a template when the
// request is submitted. It is owned by its request.
type WorkflowStep struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	ApproverID   string     `json:"approver_id"`
	ApproverName string     `json:"approver_name"`
	Status       StepStatus `json:"status"`
	Comment      string     `json:"comment,omitempty"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	Order        int        `json:"order"`
}

// WorkflowRequest is an HR request moving through its approval chain
type WorkflowRequest struct {
	ID            string          `json:"id"`
	Type          RequestType     `json:"type"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	RequesterID   string          `json:"requester_id"`
	RequesterName string          `json:"requester_name"`
	StartDate     *time.Time      `json:"start_date,omitempty"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	DurationLabel string          `json:"duration,omitempty"`
	Status        RequestStatus   `json:"status"`
	CurrentStep   int             `json:"current_step"`
	Steps         []*WorkflowStep `json:"steps"`
	Metadata      Metadata        `json:"metadata"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// StepByID returns the step with the given id, or nil
func (r *WorkflowRequest) StepByID(stepID string) *WorkflowStep {
	for _, s := range r.Steps {
		if s.ID == stepID {
			return s
		}
	}
	return nil
}

// StepByOrder returns the step whose order matches, or nil
func (r *WorkflowRequest) StepByOrder(order int) *WorkflowStep {
	for _, s := range r.Steps {
		if s.Order == order {
			return s
		}
	}
	return nil
}

// ActiveStep returns the step the current pointer designates while the
// request is waiting on an approver, or nil.
func (r *WorkflowRequest) ActiveStep() *WorkflowStep {
	if !r.Status.IsPending() {
		return nil
	}
	return r.StepByOrder(r.CurrentStep)
}

// NextStepAfter returns the step with the smallest order strictly greater
// than order. Array position is never consulted.
func (r *WorkflowRequest) NextStepAfter(order int) *WorkflowStep {
	var next *WorkflowStep
	for _, s := range r.Steps {
		if s.Order > order && (next == nil || s.Order < next.Order) {
			next = s
		}
	}
	return next
}

// Clone returns a deep copy so stored records are never aliased by callers
func (r *WorkflowRequest) Clone() *WorkflowRequest {
	if r == nil {
		return nil
	}
	c := *r
	c.StartDate = cloneTime(r.StartDate)
	c.EndDate = cloneTime(r.EndDate)
	c.Metadata = r.Metadata.Clone()
	c.Steps = make([]*WorkflowStep, len(r.Steps))
	for i, s := range r.Steps {
		sc := *s
		sc.ProcessedAt = cloneTime(s.ProcessedAt)
		c.Steps[i] = &sc
	}
	return &c
}

// StepID builds the identifier of the step materialized at the given order
func StepID(requestID string, order int) string {
	return fmt.Sprintf("%s_step_%d", requestID, order)
}

// DurationLabel renders the inclusive calendar-day span between two dates
func DurationLabel(start, end time.Time) string {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	diff := e.Sub(s)
	if diff < 0 {
		diff = -diff
	}
	days := int(diff.Hours()/24) + 1
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
