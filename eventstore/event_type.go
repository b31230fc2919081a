package eventstore

// EventType classifies events in the payment lifecycle. The set is closed:
// the store rejects unknown types at build time, and the projection layer
// folds every member exhaustively.
type EventType string

const (
	// Lifecycle events
	PaymentInitiated  EventType = "PaymentInitiated"
	PaymentAuthorized EventType = "PaymentAuthorized"
	PaymentCaptured   EventType = "PaymentCaptured"
	PaymentSettled    EventType = "PaymentSettled"
	PaymentFailed     EventType = "PaymentFailed"
	PaymentCancelled  EventType = "PaymentCancelled"
	PaymentRefunded   EventType = "PaymentRefunded"

	// Fraud and security events
	FraudCheckPassed    EventType = "FraudCheckPassed"
	FraudDetected       EventType = "FraudDetected"
	SecurityAlert       EventType = "SecurityAlert"
	ChargebackInitiated EventType = "ChargebackInitiated"

	// Routing events
	RoutingSelected EventType = "RoutingSelected"
	RoutingFailover EventType = "RoutingFailover"

	// Error events
	ProcessorError EventType = "ProcessorError"

	// Webhook events
	WebhookReceived  EventType = "WebhookReceived"
	WebhookDelivered EventType = "WebhookDelivered"

	// Reconciliation events
	ReconciliationMatched    EventType = "ReconciliationMatched"
	ReconciliationMismatched EventType = "ReconciliationMismatched"

	// Configuration events
	ConfigurationChanged EventType = "ConfigurationChanged"
)

// eventTypeAttributes carries the per-kind attributes queried by the
// publisher and the projection layer. Membership in this table defines the
// closed set; adding a new kind means adding a row here.
type eventTypeAttributes struct {
	terminal     bool
	highPriority bool
}

var eventTypeTable = map[EventType]eventTypeAttributes{
	PaymentInitiated:         {},
	PaymentAuthorized:        {},
	PaymentCaptured:          {terminal: true},
	PaymentSettled:           {terminal: true},
	PaymentFailed:            {terminal: true, highPriority: true},
	PaymentCancelled:         {terminal: true},
	PaymentRefunded:          {terminal: true},
	FraudCheckPassed:         {},
	FraudDetected:            {terminal: true, highPriority: true},
	SecurityAlert:            {highPriority: true},
	ChargebackInitiated:      {highPriority: true},
	RoutingSelected:          {},
	RoutingFailover:          {},
	ProcessorError:           {},
	WebhookReceived:          {},
	WebhookDelivered:         {},
	ReconciliationMatched:    {},
	ReconciliationMismatched: {},
	ConfigurationChanged:     {},
}

// IsKnown reports whether the event type belongs to the closed set.
func (t EventType) IsKnown() bool {
	_, ok := eventTypeTable[t]
	return ok
}

// IsTerminal reports whether the event type finishes the business lifecycle
// of its aggregate. Once a terminal event has been folded, the aggregate
// stays terminal.
func (t EventType) IsTerminal() bool {
	return eventTypeTable[t].terminal
}

// IsHighPriority reports whether the event type must be published ahead of
// routine event volume. Fraud and security signals are never starved behind
// bulk traffic.
func (t EventType) IsHighPriority() bool {
	return eventTypeTable[t].highPriority
}

// String returns the event type identifier.
func (t EventType) String() string {
	return string(t)
}

// AllEventTypes returns every member of the closed set.
// The order is unspecified.
func AllEventTypes() []EventType {
	all := make([]EventType, 0, len(eventTypeTable))
	for eventType := range eventTypeTable {
		all = append(all, eventType)
	}

	return all
}
