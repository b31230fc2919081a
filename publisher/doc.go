// Package publisher turns business facts into durably appended, broadcast
// payment events.
//
// A Publisher serializes the payload, appends the event to the store, and
// only then fans it out to the configured broadcasters; a failed append never
// produces a partial broadcast. Fan-out failures are logged and never fail
// the publish, since the event is already durable.
//
// The asynchronous path is guarded by a bounded admission-control pool: a
// saturated pool fails fast with ErrCapacityExceeded instead of queuing
// unboundedly, protecting the store and downstream consumers during traffic
// spikes. High-priority event kinds (fraud, security, payment failure,
// chargeback) are published ahead of routine volume by PublishWithPriority.
package publisher
