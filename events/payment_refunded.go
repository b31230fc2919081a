package events

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/finlock/payment-eventstore-go/eventstore"
)

type PaymentRefunded struct {
	eventType eventstore.EventType
	Payload   PaymentRefundedPayload
}

type PaymentRefundedPayload struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

func PaymentRefundedFromPayload(payload PaymentRefundedPayload) PaymentRefunded {
	return PaymentRefunded{
		eventType: eventstore.PaymentRefunded,
		Payload:   payload,
	}
}

func PaymentRefundedFromJSON(eventJSON []byte) (PaymentRefunded, error) {
	payload := new(PaymentRefundedPayload)
	err := jsoniter.ConfigFastest.Unmarshal(eventJSON, &payload)
	if err != nil {
		return PaymentRefunded{}, err
	}

	return PaymentRefunded{
		eventType: eventstore.PaymentRefunded,
		Payload:   *payload,
	}, nil
}

func (pr PaymentRefunded) EventType() eventstore.EventType {
	return pr.eventType
}

func (pr PaymentRefunded) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(pr.Payload)
}
