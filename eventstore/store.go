package eventstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAppendingEventFailed is returned when the storage engine rejects an append.
	ErrAppendingEventFailed = errors.New("appending event failed")

	// ErrQueryingEventsFailed is returned when a query against the storage engine fails.
	ErrQueryingEventsFailed = errors.New("querying events failed")

	// ErrNoEventsFound is returned when a single-event lookup matches nothing.
	// Callers treat this as "not found", not as a system fault.
	ErrNoEventsFound = errors.New("no events found")

	// ErrDeletingEventsFailed is returned when the retention cleanup fails.
	ErrDeletingEventsFailed = errors.New("deleting events failed")

	// ErrNilDatabaseConnection is returned when a store engine is constructed without a connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyEventTableName is returned when an empty event table name is configured.
	ErrEmptyEventTableName = errors.New("event table name must not be empty")
)

// Store is the contract for a durable, append-only payment event log.
//
// Implementations must be safe for concurrent use. Appends to different
// aggregates never block each other; appends to the same aggregate are
// serialized by the engine's sequence assignment, so events are always read
// back in the order they were durably appended. All query methods return
// events ordered by ascending sequence number.
type Store interface {
	// Append assigns EventID, OccurredAt, and SequenceNumber to the given
	// event, persists it durably, and returns the completed event.
	Append(ctx context.Context, event Event) (Event, error)

	// EventsForPayment returns the full history of one aggregate.
	EventsForPayment(ctx context.Context, paymentID string) (Events, error)

	// EventsForPaymentInRange returns one aggregate's events with
	// from <= OccurredAt <= until. A zero bound is open.
	EventsForPaymentInRange(ctx context.Context, paymentID string, from, until time.Time) (Events, error)

	// EventsForPaymentOfType returns one aggregate's events of a single type.
	EventsForPaymentOfType(ctx context.Context, paymentID string, eventType EventType) (Events, error)

	// EventsForPaymentFromSequence returns one aggregate's events with
	// SequenceNumber >= fromSequence, for resumable replay.
	EventsForPaymentFromSequence(ctx context.Context, paymentID string, fromSequence SequenceNumberUint) (Events, error)

	// EventsForCorrelationID returns all events sharing a correlation id,
	// across aggregates.
	EventsForCorrelationID(ctx context.Context, correlationID string) (Events, error)

	// EventsInRange returns events across all aggregates with
	// from <= OccurredAt <= until, for disaster recovery replay.
	// A zero bound is open.
	EventsInRange(ctx context.Context, from, until time.Time) (Events, error)

	// LatestEventForPayment returns the most recent event of one aggregate,
	// or ErrNoEventsFound.
	LatestEventForPayment(ctx context.Context, paymentID string) (Event, error)

	// DeleteEventsBefore removes all events with OccurredAt < cutoff and
	// returns the number of events removed. This is the only mutation of
	// history the store permits; it is a bulk retention operation and must
	// not be pointed at a time range that could still contain non-terminal
	// aggregates.
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
