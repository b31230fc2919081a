package projection

import (
	"fmt"

	"github.com/finlock/payment-eventstore-go/eventstore"
)

// ValidationResult reports invariant violations found in one aggregate's
// ordered event sequence. Valid is true iff Violations is empty.
type ValidationResult struct {
	PaymentID  string
	Valid      bool
	Violations []string
}

// requiredPredecessors is the fixed "X implies Y must also be present" table
// used for missing-event inference.
var requiredPredecessors = map[eventstore.EventType]eventstore.EventType{
	eventstore.PaymentAuthorized:   eventstore.PaymentInitiated,
	eventstore.PaymentCaptured:     eventstore.PaymentAuthorized,
	eventstore.PaymentSettled:      eventstore.PaymentCaptured,
	eventstore.PaymentRefunded:     eventstore.PaymentCaptured,
	eventstore.ChargebackInitiated: eventstore.PaymentCaptured,
}

// ValidateSequence checks ordering invariants over one aggregate's events.
//
// It always returns a result and never fails, so bulk audits can run over
// many aggregates without interruption:
//   - the first event must be PaymentInitiated
//   - at most one terminal event may appear
//   - once a terminal event has been observed, no further non-terminal
//     event is allowed (additional terminal events are flagged by the
//     single-terminal rule rather than silently accepted)
//   - expected-but-absent predecessor types are inferred from a fixed table
func ValidateSequence(paymentID string, history eventstore.Events) ValidationResult {
	var violations []string

	if len(history) == 0 {
		violations = append(violations, "event history is empty")
		return buildResult(paymentID, violations)
	}

	if first := history[0].EventType; first != eventstore.PaymentInitiated {
		violations = append(violations,
			fmt.Sprintf("first event is %s, expected %s", first, eventstore.PaymentInitiated))
	}

	violations = append(violations, terminalViolations(history)...)
	violations = append(violations, missingPredecessorViolations(history)...)

	return buildResult(paymentID, violations)
}

func terminalViolations(history eventstore.Events) []string {
	var violations []string
	var terminalSeen eventstore.EventType
	terminalObserved := false

	for position, event := range history {
		if event.EventType.IsTerminal() {
			if terminalObserved {
				violations = append(violations,
					fmt.Sprintf("second terminal event %s at position %d, terminal event %s already observed",
						event.EventType, position, terminalSeen))
				continue
			}

			terminalObserved = true
			terminalSeen = event.EventType
			continue
		}

		if terminalObserved {
			violations = append(violations,
				fmt.Sprintf("event %s at position %d occurs after terminal event %s",
					event.EventType, position, terminalSeen))
		}
	}

	return violations
}

func missingPredecessorViolations(history eventstore.Events) []string {
	present := make(map[eventstore.EventType]struct{}, len(history))
	for _, event := range history {
		present[event.EventType] = struct{}{}
	}

	var violations []string

	// Deterministic order: walk the history, reporting each missing
	// predecessor once.
	reported := make(map[eventstore.EventType]struct{})
	for _, event := range history {
		required, hasRule := requiredPredecessors[event.EventType]
		if !hasRule {
			continue
		}

		if _, alreadyReported := reported[event.EventType]; alreadyReported {
			continue
		}

		if _, found := present[required]; !found {
			violations = append(violations,
				fmt.Sprintf("%s present without expected predecessor %s", event.EventType, required))
			reported[event.EventType] = struct{}{}
		}
	}

	return violations
}

func buildResult(paymentID string, violations []string) ValidationResult {
	return ValidationResult{
		PaymentID:  paymentID,
		Valid:      len(violations) == 0,
		Violations: violations,
	}
}
