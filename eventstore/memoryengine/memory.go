// Package memoryengine provides a thread-safe in-memory implementation of the
// payment event store contract, suitable for tests and development.
package memoryengine

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finlock/payment-eventstore-go/eventstore"
)

// EventStore is a thread-safe in-memory implementation of eventstore.Store.
//
// A single mutex only guards the slice bookkeeping; sequence assignment is
// monotonic across all aggregates, mirroring the BIGSERIAL ordering of the
// Postgres engine.
type EventStore struct {
	mu           sync.RWMutex
	events       eventstore.Events            // all events, ordered by sequence number
	byPayment    map[string]eventstore.Events // paymentID -> events, ordered by sequence number
	lastSequence eventstore.SequenceNumberUint
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		byPayment: make(map[string]eventstore.Events),
	}
}

// Append assigns EventID, OccurredAt, and the next sequence number, then stores the event.
func (es *EventStore) Append(_ context.Context, event eventstore.Event) (eventstore.Event, error) {
	es.mu.Lock()
	defer es.mu.Unlock()

	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	es.lastSequence++
	event.SequenceNumber = es.lastSequence

	es.events = append(es.events, event)
	es.byPayment[event.PaymentID] = append(es.byPayment[event.PaymentID], event)

	return event, nil
}

// EventsForPayment returns the full ordered history of one aggregate.
func (es *EventStore) EventsForPayment(_ context.Context, paymentID string) (eventstore.Events, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	return slices.Clone(es.byPayment[paymentID]), nil
}

// EventsForPaymentInRange returns one aggregate's events within the given
// time window. A zero bound is open.
func (es *EventStore) EventsForPaymentInRange(
	_ context.Context,
	paymentID string,
	from time.Time,
	until time.Time,
) (eventstore.Events, error) {

	es.mu.RLock()
	defer es.mu.RUnlock()

	return filterEvents(es.byPayment[paymentID], func(e eventstore.Event) bool {
		return inRange(e.OccurredAt, from, until)
	}), nil
}

// EventsForPaymentOfType returns one aggregate's events of a single type.
func (es *EventStore) EventsForPaymentOfType(
	_ context.Context,
	paymentID string,
	eventType eventstore.EventType,
) (eventstore.Events, error) {

	es.mu.RLock()
	defer es.mu.RUnlock()

	return filterEvents(es.byPayment[paymentID], func(e eventstore.Event) bool {
		return e.EventType == eventType
	}), nil
}

// EventsForPaymentFromSequence returns one aggregate's events with a sequence
// number of at least fromSequence.
func (es *EventStore) EventsForPaymentFromSequence(
	_ context.Context,
	paymentID string,
	fromSequence eventstore.SequenceNumberUint,
) (eventstore.Events, error) {

	es.mu.RLock()
	defer es.mu.RUnlock()

	return filterEvents(es.byPayment[paymentID], func(e eventstore.Event) bool {
		return e.SequenceNumber >= fromSequence
	}), nil
}

// EventsForCorrelationID returns all events sharing a correlation id, across aggregates.
func (es *EventStore) EventsForCorrelationID(_ context.Context, correlationID string) (eventstore.Events, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	return filterEvents(es.events, func(e eventstore.Event) bool {
		return e.CorrelationID != "" && e.CorrelationID == correlationID
	}), nil
}

// EventsInRange returns events across all aggregates within the given time
// window. A zero bound is open.
func (es *EventStore) EventsInRange(_ context.Context, from, until time.Time) (eventstore.Events, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	return filterEvents(es.events, func(e eventstore.Event) bool {
		return inRange(e.OccurredAt, from, until)
	}), nil
}

// LatestEventForPayment returns the most recent event of one aggregate,
// or eventstore.ErrNoEventsFound.
func (es *EventStore) LatestEventForPayment(_ context.Context, paymentID string) (eventstore.Event, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	history := es.byPayment[paymentID]
	if len(history) == 0 {
		return eventstore.Event{}, eventstore.ErrNoEventsFound
	}

	return history[len(history)-1], nil
}

// DeleteEventsBefore removes all events with OccurredAt < cutoff and returns
// the number of events removed.
func (es *EventStore) DeleteEventsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	es.mu.Lock()
	defer es.mu.Unlock()

	keep := func(e eventstore.Event) bool {
		return !e.OccurredAt.Before(cutoff)
	}

	removed := int64(len(es.events))
	es.events = filterEvents(es.events, keep)
	removed -= int64(len(es.events))

	for paymentID, history := range es.byPayment {
		remaining := filterEvents(history, keep)
		if len(remaining) == 0 {
			delete(es.byPayment, paymentID)
			continue
		}

		es.byPayment[paymentID] = remaining
	}

	return removed, nil
}

func filterEvents(events eventstore.Events, match func(eventstore.Event) bool) eventstore.Events {
	filtered := make(eventstore.Events, 0, len(events))
	for _, event := range events {
		if match(event) {
			filtered = append(filtered, event)
		}
	}

	return filtered
}

func inRange(occurredAt time.Time, from, until time.Time) bool {
	if !from.IsZero() && occurredAt.Before(from) {
		return false
	}

	if !until.IsZero() && occurredAt.After(until) {
		return false
	}

	return true
}
