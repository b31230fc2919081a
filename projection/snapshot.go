package projection

import (
	"maps"
	"slices"
	"time"

	"github.com/finlock/payment-eventstore-go/eventstore"
)

// Free-form status names produced by the fold. The reconstructor does not
// validate business status transitions, it only folds them.
const (
	StatusUnknown      = "UNKNOWN"
	StatusInitiated    = "INITIATED"
	StatusAuthorized   = "AUTHORIZED"
	StatusCaptured     = "CAPTURED"
	StatusSettled      = "SETTLED"
	StatusFailed       = "FAILED"
	StatusCancelled    = "CANCELLED"
	StatusRefunded     = "REFUNDED"
	StatusFraudBlocked = "FRAUD_BLOCKED"
)

// PaymentSnapshot is a derived, disposable, point-in-time projection of one
// aggregate's state. It owns no reference back to the store and is a value
// object, safely shared read-only across goroutines. It is never the system
// of record.
type PaymentSnapshot struct {
	PaymentID          string
	CurrentStatus      string
	Amount             int64
	Currency           string
	MerchantID         string
	PaymentMethod      string
	CreatedAt          time.Time
	LastUpdatedAt      time.Time
	ProcessorReference string
	EventHistory       []eventstore.EventType
	Metadata           map[string]string
	IsTerminal         bool
	LastEventID        string
	EventCount         int
}

// PlaceholderSnapshot returns the empty snapshot used when an aggregate has
// no events or its history could not be folded. Callers polling a payment
// that does not exist yet receive this instead of an error.
func PlaceholderSnapshot(paymentID string) PaymentSnapshot {
	return PaymentSnapshot{
		PaymentID:     paymentID,
		CurrentStatus: StatusUnknown,
		EventHistory:  []eventstore.EventType{},
		Metadata:      map[string]string{},
	}
}

// accumulator collects state during the fold and is converted to the
// immutable PaymentSnapshot exactly once, at the end.
type accumulator struct {
	paymentID          string
	status             string
	amount             int64
	currency           string
	merchantID         string
	paymentMethod      string
	createdAt          time.Time
	lastUpdatedAt      time.Time
	processorReference string
	eventHistory       []eventstore.EventType
	metadata           map[string]string
	isTerminal         bool
	lastEventID        string
	eventCount         int
}

func newAccumulator(paymentID string) *accumulator {
	return &accumulator{
		paymentID: paymentID,
		status:    StatusUnknown,
		metadata:  make(map[string]string),
	}
}

// snapshot converts the accumulator into the final value object, copying the
// history slice and metadata map so the snapshot shares no mutable state.
func (a *accumulator) snapshot() PaymentSnapshot {
	return PaymentSnapshot{
		PaymentID:          a.paymentID,
		CurrentStatus:      a.status,
		Amount:             a.amount,
		Currency:           a.currency,
		MerchantID:         a.merchantID,
		PaymentMethod:      a.paymentMethod,
		CreatedAt:          a.createdAt,
		LastUpdatedAt:      a.lastUpdatedAt,
		ProcessorReference: a.processorReference,
		EventHistory:       slices.Clone(a.eventHistory),
		Metadata:           maps.Clone(a.metadata),
		IsTerminal:         a.isTerminal,
		LastEventID:        a.lastEventID,
		EventCount:         a.eventCount,
	}
}
