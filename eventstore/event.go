package eventstore

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrInvalidPayloadJSON is returned when the event payload is not valid JSON.
	ErrInvalidPayloadJSON = errors.New("payload json is not valid")

	// ErrEmptyPaymentID is returned when an event is built without a payment id.
	ErrEmptyPaymentID = errors.New("payment id must not be empty")

	// ErrUnknownEventType is returned when an event is built with a type outside the closed set.
	ErrUnknownEventType = errors.New("event type is not a known payment event type")
)

// SequenceNumberUint is a type alias for uint64, representing the store-assigned
// sequence number of an event. It is globally unique and monotonic, which makes
// it monotonic per aggregate as well, and serves as the resume token for
// "replay from version X".
type SequenceNumberUint = uint64

// Events is an alias type for a slice of Event.
type Events = []Event

// Event is an immutable payment lifecycle fact.
//
// It is built on scalars to stay agnostic of the domain payload types in
// client code; the payload is opaque JSON interpreted only by the projection
// layer. EventID, OccurredAt, and SequenceNumber are assigned by the store at
// append time and are zero until then.
//
// While its properties are exported, it should only be constructed with the
// supplied factory methods:
//   - BuildEvent
//   - BuildEventWithTracing
type Event struct {
	EventID        string
	PaymentID      string
	EventType      EventType
	PayloadJSON    []byte
	OccurredAt     time.Time
	SequenceNumber SequenceNumberUint
	CorrelationID  string
	ActorID        string
}

// BuildEvent is a factory method for Event.
//
// It populates the Event with the given scalar input, leaving the
// store-assigned fields (EventID, OccurredAt, SequenceNumber) empty.
// Returns an error if payloadJSON is not valid JSON, the payment id is empty,
// or the event type is not part of the closed set.
func BuildEvent(paymentID string, eventType EventType, payloadJSON []byte) (Event, error) {
	return BuildEventWithTracing(paymentID, eventType, payloadJSON, "", "")
}

// BuildEventWithTracing is a factory method for Event carrying the optional
// correlation id and actor id used for tracing and audit.
func BuildEventWithTracing(
	paymentID string,
	eventType EventType,
	payloadJSON []byte,
	correlationID string,
	actorID string,
) (Event, error) {

	if paymentID == "" {
		return Event{}, ErrEmptyPaymentID
	}

	if !eventType.IsKnown() {
		return Event{}, ErrUnknownEventType
	}

	if !json.Valid(payloadJSON) {
		return Event{}, ErrInvalidPayloadJSON
	}

	return Event{
		PaymentID:     paymentID,
		EventType:     eventType,
		PayloadJSON:   payloadJSON,
		CorrelationID: correlationID,
		ActorID:       actorID,
	}, nil
}
