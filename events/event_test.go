package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlock/payment-eventstore-go/events"
	"github.com/finlock/payment-eventstore-go/eventstore"
)

func Test_PaymentInitiated_RoundTrip(t *testing.T) {
	// arrange
	original := events.PaymentInitiatedFromPayload(events.PaymentInitiatedPayload{
		Amount:        2499,
		Currency:      "USD",
		MerchantID:    "merch-001",
		PaymentMethod: "card",
	})

	// act
	payloadJSON, err := original.PayloadToJSON()
	require.NoError(t, err)

	restored, err := events.FromJSON(eventstore.PaymentInitiated, payloadJSON)

	// assert
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func Test_PaymentInitiated_PayloadUsesSnakeCaseFields(t *testing.T) {
	// arrange
	event := events.PaymentInitiatedFromPayload(events.PaymentInitiatedPayload{
		Amount:     100,
		Currency:   "EUR",
		MerchantID: "merch-002",
	})

	// act
	payloadJSON, err := event.PayloadToJSON()

	// assert
	require.NoError(t, err)
	assert.Contains(t, string(payloadJSON), `"merchant_id"`)
	assert.Contains(t, string(payloadJSON), `"amount"`)
}

func Test_FromJSON_When_EventTypeCarriesNoPayload(t *testing.T) {
	// act
	_, err := events.FromJSON(eventstore.WebhookReceived, []byte(`{}`))

	// assert
	require.Error(t, err)
}

func Test_FromJSON_When_PayloadIsMalformed(t *testing.T) {
	// act
	_, err := events.FromJSON(eventstore.PaymentAuthorized, []byte(`{"processor_reference":`))

	// assert
	require.Error(t, err)
}
