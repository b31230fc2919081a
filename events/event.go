// Package events defines the typed payloads of the payment event vocabulary.
// Each type knows its event type name and how to serialize its payload;
// FromJSON turns a stored payload back into its typed form.
package events

import (
	"errors"

	"github.com/finlock/payment-eventstore-go/eventstore"
)

type Events = []Event

// Event is a typed payment event payload.
type Event interface {
	EventType() eventstore.EventType
	PayloadToJSON() ([]byte, error)
}

var errUnmarshalingFailed = errors.New("unmarshalling event from json failed")

// FromJSON restores a typed event from its stored type name and payload.
// Event types without a state-carrying payload are not dispatched here.
func FromJSON(eventType eventstore.EventType, payload []byte) (Event, error) {
	switch eventType {
	case eventstore.PaymentInitiated:
		event, unmarshallingErr := PaymentInitiatedFromJSON(payload)
		if unmarshallingErr != nil {
			return nil, errors.Join(errUnmarshalingFailed, unmarshallingErr)
		}

		return event, nil

	case eventstore.PaymentAuthorized:
		event, unmarshallingErr := PaymentAuthorizedFromJSON(payload)
		if unmarshallingErr != nil {
			return nil, errors.Join(errUnmarshalingFailed, unmarshallingErr)
		}

		return event, nil

	case eventstore.PaymentFailed:
		event, unmarshallingErr := PaymentFailedFromJSON(payload)
		if unmarshallingErr != nil {
			return nil, errors.Join(errUnmarshalingFailed, unmarshallingErr)
		}

		return event, nil

	case eventstore.PaymentRefunded:
		event, unmarshallingErr := PaymentRefundedFromJSON(payload)
		if unmarshallingErr != nil {
			return nil, errors.Join(errUnmarshalingFailed, unmarshallingErr)
		}

		return event, nil

	default:
		return nil, errors.New("unknown event type: " + eventType.String())
	}
}
