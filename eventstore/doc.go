// Package eventstore provides the core types and contracts for the
// payment event-sourcing subsystem.
//
// This package defines the fundamental building blocks shared by every
// store engine and by the publisher, projection, and replay layers:
//
//   - Event: an immutable, durably appended payment lifecycle fact
//   - EventType: the closed set of event kinds with terminal and
//     priority attributes
//   - Store: the contract every storage engine must satisfy
//   - Logger / MetricsCollector: dependency-free observability hooks
//
// Events belonging to one PaymentID form an aggregate: the unit of
// ordering and replay. The store assigns EventID, OccurredAt, and
// SequenceNumber at append time; events are never mutated afterward.
//
// Common usage pattern:
//
//	event, err := eventstore.BuildEvent(paymentID, eventstore.PaymentInitiated, payloadJSON)
//	if err != nil {
//		// handle error
//	}
//
//	appended, err := store.Append(ctx, event)
//	if err != nil {
//		// handle error
//	}
//
//	history, err := store.EventsForPayment(ctx, paymentID)
package eventstore
