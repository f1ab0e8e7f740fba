package entity

// WorkflowStepTemplate binds one named approval step of a workflow type to an
// approver. Requests copy their templates at submission time, so edits only
// affect requests submitted afterwards.
type WorkflowStepTemplate struct {
	ID           string      `json:"id"`
	WorkflowType RequestType `json:"workflow_type"`
	StepName     string      `json:"step_name"`
	ApproverID   string      `json:"approver_id"`
	ApproverName string      `json:"approver_name"`
	Order        int         `json:"order"`
}
