package events

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/finlock/payment-eventstore-go/eventstore"
)

type PaymentInitiated struct {
	eventType eventstore.EventType
	Payload   PaymentInitiatedPayload
}

type PaymentInitiatedPayload struct {
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	MerchantID    string `json:"merchant_id"`
	PaymentMethod string `json:"payment_method"`
}

func PaymentInitiatedFromPayload(payload PaymentInitiatedPayload) PaymentInitiated {
	return PaymentInitiated{
		eventType: eventstore.PaymentInitiated,
		Payload:   payload,
	}
}

func PaymentInitiatedFromJSON(eventJSON []byte) (PaymentInitiated, error) {
	payload := new(PaymentInitiatedPayload)
	err := jsoniter.ConfigFastest.Unmarshal(eventJSON, &payload)
	if err != nil {
		return PaymentInitiated{}, err
	}

	return PaymentInitiated{
		eventType: eventstore.PaymentInitiated,
		Payload:   *payload,
	}, nil
}

func (pi PaymentInitiated) EventType() eventstore.EventType {
	return pi.eventType
}

func (pi PaymentInitiated) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(pi.Payload)
}
