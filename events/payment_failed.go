package events

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/finlock/payment-eventstore-go/eventstore"
)

type PaymentFailed struct {
	eventType eventstore.EventType
	Payload   PaymentFailedPayload
}

type PaymentFailedPayload struct {
	FailureReason string `json:"failure_reason"`
	ProcessorCode string `json:"processor_code"`
}

func PaymentFailedFromPayload(payload PaymentFailedPayload) PaymentFailed {
	return PaymentFailed{
		eventType: eventstore.PaymentFailed,
		Payload:   payload,
	}
}

func PaymentFailedFromJSON(eventJSON []byte) (PaymentFailed, error) {
	payload := new(PaymentFailedPayload)
	err := jsoniter.ConfigFastest.Unmarshal(eventJSON, &payload)
	if err != nil {
		return PaymentFailed{}, err
	}

	return PaymentFailed{
		eventType: eventstore.PaymentFailed,
		Payload:   *payload,
	}, nil
}

func (pf PaymentFailed) EventType() eventstore.EventType {
	return pf.eventType
}

func (pf PaymentFailed) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(pf.Payload)
}
