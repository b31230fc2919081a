package eventstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finlock/payment-eventstore-go/eventstore"
)

func Test_EventType_TerminalAttribute(t *testing.T) {
	tests := []struct {
		eventType eventstore.EventType
		terminal  bool
	}{
		{eventstore.PaymentInitiated, false},
		{eventstore.PaymentAuthorized, false},
		{eventstore.PaymentCaptured, true},
		{eventstore.PaymentSettled, true},
		{eventstore.PaymentFailed, true},
		{eventstore.PaymentCancelled, true},
		{eventstore.PaymentRefunded, true},
		{eventstore.FraudDetected, true},
		{eventstore.SecurityAlert, false},
		{eventstore.ChargebackInitiated, false},
		{eventstore.WebhookReceived, false},
	}

	for _, tc := range tests {
		t.Run(tc.eventType.String(), func(t *testing.T) {
			assert.Equal(t, tc.terminal, tc.eventType.IsTerminal())
		})
	}
}

func Test_EventType_HighPriorityAttribute(t *testing.T) {
	highPriority := []eventstore.EventType{
		eventstore.FraudDetected,
		eventstore.SecurityAlert,
		eventstore.PaymentFailed,
		eventstore.ChargebackInitiated,
	}

	for _, eventType := range highPriority {
		assert.True(t, eventType.IsHighPriority(), "%s should be high priority", eventType)
	}

	normal := []eventstore.EventType{
		eventstore.PaymentInitiated,
		eventstore.PaymentCaptured,
		eventstore.RoutingSelected,
		eventstore.ReconciliationMatched,
	}

	for _, eventType := range normal {
		assert.False(t, eventType.IsHighPriority(), "%s should not be high priority", eventType)
	}
}

func Test_AllEventTypes_AreKnown(t *testing.T) {
	all := eventstore.AllEventTypes()

	assert.NotEmpty(t, all)
	for _, eventType := range all {
		assert.True(t, eventType.IsKnown())
	}

	assert.False(t, eventstore.EventType("").IsKnown())
	assert.False(t, eventstore.EventType("SomethingElse").IsKnown())
}
