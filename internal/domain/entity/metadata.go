package entity

import "fmt"

// Metadata carries the type-specific attributes of a request. Exactly one
// variant is set and it must match the request type.
type Metadata struct {
	Leave       *LeaveDetails       `json:"leave,omitempty"`
	Training    *TrainingDetails    `json:"training,omitempty"`
	Certificate *CertificateDetails `json:"certificate,omitempty"`
	Complaint   *ComplaintDetails   `json:"complaint,omitempty"`
}

// LeaveDetails holds leave request attributes
type LeaveDetails struct {
	LeaveType string `json:"leave_type"`
}

// TrainingDetails holds training request attributes
type TrainingDetails struct {
	Provider      string  `json:"provider"`
	Cost          float64 `json:"cost"`
	Location      string  `json:"location"`
	Justification string  `json:"justification"`
}

// CertificateDetails holds certificate request attributes
type CertificateDetails struct {
	CertificateType string `json:"certificate_type"`
	Purpose         string `json:"purpose"`
}

// Complaint urgency levels
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// ComplaintDetails holds complaint attributes
type ComplaintDetails struct {
	Category string `json:"category"`
	Urgency  string `json:"urgency"`
}

// Kind reports which variant is set, or "" when none is
func (m Metadata) Kind() RequestType {
	switch {
	case m.Leave != nil:
		return RequestTypeLeave
	case m.Training != nil:
		return RequestTypeTraining
	case m.Certificate != nil:
		return RequestTypeCertificate
	case m.Complaint != nil:
		return RequestTypeComplaint
	}
	return ""
}

// variants counts the populated variants
func (m Metadata) variants() int {
	n := 0
	if m.Leave != nil {
		n++
	}
	if m.Training != nil {
		n++
	}
	if m.Certificate != nil {
		n++
	}
	if m.Complaint != nil {
		n++
	}
	return n
}

// Validate checks that the metadata variant matches the request type.
// An empty bag is accepted and normalized by Normalize.
func (m Metadata) Validate(t RequestType) error {
	if m.variants() > 1 {
		return fmt.Errorf("metadata must carry a single variant")
	}
	if k := m.Kind(); k != "" && k != t {
		return fmt.Errorf("metadata variant %s does not match request type %s", k, t)
	}
	if m.Complaint != nil && m.Complaint.Urgency != "" {
		switch m.Complaint.Urgency {
		case UrgencyLow, UrgencyMedium, UrgencyHigh:
		default:
			return fmt.Errorf("unknown complaint urgency: %s", m.Complaint.Urgency)
		}
	}
	if m.Training != nil && m.Training.Cost < 0 {
		return fmt.Errorf("training cost cannot be negative")
	}
	return nil
}

// Normalize returns metadata with the variant for t populated, defaulting
// complaint urgency to medium.
func (m Metadata) Normalize(t RequestType) Metadata {
	out := m.Clone()
	switch t {
	case RequestTypeLeave:
		if out.Leave == nil {
			out.Leave = &LeaveDetails{}
		}
	case RequestTypeTraining:
		if out.Training == nil {
			out.Training = &TrainingDetails{}
		}
	case RequestTypeCertificate:
		if out.Certificate == nil {
			out.Certificate = &CertificateDetails{}
		}
	case RequestTypeComplaint:
		if out.Complaint == nil {
			out.Complaint = &ComplaintDetails{}
		}
		if out.Complaint.Urgency == "" {
			out.Complaint.Urgency = UrgencyMedium
		}
	}
	return out
}

// Clone returns a deep copy
func (m Metadata) Clone() Metadata {
	var c Metadata
	if m.Leave != nil {
		v := *m.Leave
		c.Leave = &v
	}
	if m.Training != nil {
		v := *m.Training
		c.Training = &v
	}
	if m.Certificate != nil {
		v := *m.Certificate
		c.Certificate = &v
	}
	if m.Complaint != nil {
		v := *m.Complaint
		c.Complaint = &v
	}
	return c
}
