package events

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/finlock/payment-eventstore-go/eventstore"
)

type PaymentAuthorized struct {
	eventType eventstore.EventType
	Payload   PaymentAuthorizedPayload
}

type PaymentAuthorizedPayload struct {
	ProcessorReference string `json:"processor_reference"`
}

func PaymentAuthorizedFromPayload(payload PaymentAuthorizedPayload) PaymentAuthorized {
	return PaymentAuthorized{
		eventType: eventstore.PaymentAuthorized,
		Payload:   payload,
	}
}

func PaymentAuthorizedFromJSON(eventJSON []byte) (PaymentAuthorized, error) {
	payload := new(PaymentAuthorizedPayload)
	err := jsoniter.ConfigFastest.Unmarshal(eventJSON, &payload)
	if err != nil {
		return PaymentAuthorized{}, err
	}

	return PaymentAuthorized{
		eventType: eventstore.PaymentAuthorized,
		Payload:   *payload,
	}, nil
}

func (pa PaymentAuthorized) EventType() eventstore.EventType {
	return pa.eventType
}

func (pa PaymentAuthorized) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(pa.Payload)
}
