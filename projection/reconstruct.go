package projection

import (
	"errors"
	"sort"
	"strings"

	"github.com/finlock/payment-eventstore-go/events"
	"github.com/finlock/payment-eventstore-go/eventstore"
)

var (
	// ErrEmptyHistory is returned when reconstruction is requested for an
	// aggregate with no events. Callers treat this as "not found".
	ErrEmptyHistory = errors.New("event history is empty")

	// ErrDecodingPayloadFailed is returned when a state-carrying payload
	// cannot be decoded during the fold.
	ErrDecodingPayloadFailed = errors.New("decoding event payload failed")
)

// Reconstruct folds an ordered event history into the current state of one
// aggregate. It is pure and deterministic: the caller guarantees ascending
// order, the fold never re-sorts and never mutates the events.
//
// Reconstructing from an empty history fails with ErrEmptyHistory.
func Reconstruct(history eventstore.Events) (PaymentSnapshot, error) {
	if len(history) == 0 {
		return PaymentSnapshot{}, ErrEmptyHistory
	}

	acc := newAccumulator(history[0].PaymentID)

	for _, event := range history {
		if err := acc.apply(event); err != nil {
			return PaymentSnapshot{}, err
		}
	}

	last := history[len(history)-1]
	acc.lastEventID = last.EventID
	acc.eventCount = len(history)

	return acc.snapshot(), nil
}

// apply folds one event into the accumulator.
func (a *accumulator) apply(event eventstore.Event) error {
	a.eventHistory = append(a.eventHistory, event.EventType)

	if a.createdAt.IsZero() {
		a.createdAt = event.OccurredAt
	}

	switch event.EventType {
	case eventstore.PaymentInitiated:
		initiated, err := events.PaymentInitiatedFromJSON(event.PayloadJSON)
		if err != nil {
			return errors.Join(ErrDecodingPayloadFailed, err)
		}
		a.status = StatusInitiated
		a.amount = initiated.Payload.Amount
		a.currency = initiated.Payload.Currency
		a.merchantID = initiated.Payload.MerchantID
		a.paymentMethod = initiated.Payload.PaymentMethod

	case eventstore.PaymentAuthorized:
		authorized, err := events.PaymentAuthorizedFromJSON(event.PayloadJSON)
		if err != nil {
			return errors.Join(ErrDecodingPayloadFailed, err)
		}
		a.status = StatusAuthorized
		a.processorReference = authorized.Payload.ProcessorReference

	case eventstore.PaymentCaptured:
		a.markTerminal(StatusCaptured)

	case eventstore.PaymentSettled:
		a.markTerminal(StatusSettled)

	case eventstore.PaymentFailed:
		a.markTerminal(StatusFailed)

	case eventstore.PaymentCancelled:
		a.markTerminal(StatusCancelled)

	case eventstore.PaymentRefunded:
		a.markTerminal(StatusRefunded)

	case eventstore.FraudDetected:
		a.markTerminal(StatusFraudBlocked)

	case eventstore.FraudCheckPassed,
		eventstore.SecurityAlert,
		eventstore.ChargebackInitiated,
		eventstore.RoutingSelected,
		eventstore.RoutingFailover,
		eventstore.ProcessorError,
		eventstore.WebhookReceived,
		eventstore.WebhookDelivered,
		eventstore.ReconciliationMatched,
		eventstore.ReconciliationMismatched,
		eventstore.ConfigurationChanged:
		a.markLastSeen(event)

	default:
		// unknown kinds degrade to a marker instead of aborting the fold
		a.markLastSeen(event)
	}

	a.lastUpdatedAt = event.OccurredAt

	return nil
}

// markTerminal sets the status and latches the terminal flag. The flag is
// never reset: once an aggregate is terminal, it stays terminal.
func (a *accumulator) markTerminal(status string) {
	a.status = status
	a.isTerminal = true
}

// markLastSeen records a "last seen" marker for event kinds that carry no
// aggregate state, keyed by the lowercase type name.
func (a *accumulator) markLastSeen(event eventstore.Event) {
	a.metadata[strings.ToLower(event.EventType.String())] = event.OccurredAt.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

// ReconstructAll folds a flat event set spanning many aggregates: events are
// grouped by payment id, each group is sorted by timestamp (sequence number
// as tiebreaker), and folded independently. A failure folding one aggregate
// yields a placeholder snapshot for that aggregate only; it never aborts the
// batch.
func ReconstructAll(events eventstore.Events) map[string]PaymentSnapshot {
	grouped := make(map[string]eventstore.Events)
	for _, event := range events {
		grouped[event.PaymentID] = append(grouped[event.PaymentID], event)
	}

	snapshots := make(map[string]PaymentSnapshot, len(grouped))

	for paymentID, history := range grouped {
		sort.SliceStable(history, func(i, j int) bool {
			if history[i].OccurredAt.Equal(history[j].OccurredAt) {
				return history[i].SequenceNumber < history[j].SequenceNumber
			}
			return history[i].OccurredAt.Before(history[j].OccurredAt)
		})

		snapshot, err := Reconstruct(history)
		if err != nil {
			snapshots[paymentID] = PlaceholderSnapshot(paymentID)
			continue
		}

		snapshots[paymentID] = snapshot
	}

	return snapshots
}
