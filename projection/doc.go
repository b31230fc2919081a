// Package projection derives payment state from ordered event histories.
//
// The reconstructor is a pure, deterministic fold: it never touches the
// store, never mutates events, and given the same ordered history always
// produces a bit-for-bit identical PaymentSnapshot. The sequence validator
// runs over the same histories and reports invariant violations without ever
// failing, so bulk audits can sweep many aggregates uninterrupted.
package projection
