package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	evt := NewEvent(TypeStepAssigned, "req-1", "manager1", map[string]interface{}{
		KeyApproverID: "hr1",
		KeyStepID:     "req-1_step_2",
	})

	require.NotNil(t, evt)
	assert.NotEmpty(t, evt.ID)
	assert.NotEmpty(t, evt.CorrelationID)
	assert.Equal(t, TypeStepAssigned, evt.Type)
	assert.Equal(t, "req-1", evt.RequestID)
	assert.Equal(t, "manager1", evt.ActorID)
	assert.Equal(t, "hr1", evt.GetPayloadString(KeyApproverID))
	assert.False(t, evt.Timestamp.IsZero())
}

func TestNewEvent_NilPayload(t *testing.T) {
	evt := NewEvent(TypeRequestCreated, "req-1", "", nil)
	assert.NotNil(t, evt.Payload)
	assert.Equal(t, "", evt.GetPayloadString("missing"))
}

func TestNewEventWithCorrelation(t *testing.T) {
	first := NewEvent(TypeStepApproved, "req-1", "manager1", nil)
	second := NewEventWithCorrelation(TypeStepAssigned, "req-1", "manager1", nil, first.CorrelationID)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.CorrelationID, second.CorrelationID)
}

func TestEvent_WithPayloadIsImmutable(t *testing.T) {
	original := NewEvent(TypeRequestRejected, "req-1", "hr1", map[string]interface{}{KeyComment: "missing coverage"})
	updated := original.WithPayload("order", 2)

	_, exists := original.Payload["order"]
	assert.False(t, exists, "original payload must not change")
	assert.Equal(t, int64(2), updated.GetPayloadInt("order"))
	assert.Equal(t, "missing coverage", updated.GetPayloadString(KeyComment))
	assert.Equal(t, original.ID, updated.ID)
}

func TestType_IsValid(t *testing.T) {
	assert.True(t, TypeRequestApproved.IsValid())
	assert.True(t, TypeStepReminderDue.IsValid())
	assert.False(t, Type("payslip.uploaded").IsValid())
}
