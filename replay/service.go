// Package replay orchestrates state reconstruction from the event store:
// single aggregates, id lists, time windows, and whole-system disaster
// recovery. It composes the store's query shapes with the projection fold
// and the sequence validator; no event data is ever mutated during replay.
package replay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finlock/payment-eventstore-go/eventstore"
	"github.com/finlock/payment-eventstore-go/projection"
)

const (
	logMsgReplayCompleted       = "replay completed"
	logMsgSystemReplayCompleted = "system replay completed"
	logMsgReplayFailed          = "replay failed"
	logAttrPaymentID            = "payment_id"
	logAttrEventCount           = "event_count"
	logAttrPaymentCount         = "payment_count"
	logAttrError                = "error"
)

// ReplayError wraps any failure during reconstruction, always tagged with the
// aggregate id it belongs to.
type ReplayError struct {
	PaymentID string
	Err       error
}

// Error returns the error description including the aggregate id.
func (e *ReplayError) Error() string {
	return fmt.Sprintf("replay failed for payment %s: %v", e.PaymentID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ReplayError) Unwrap() error {
	return e.Err
}

// ReadStore is the narrow store contract the replay service needs.
type ReadStore interface {
	EventsForPayment(ctx context.Context, paymentID string) (eventstore.Events, error)
	EventsForPaymentInRange(ctx context.Context, paymentID string, from, until time.Time) (eventstore.Events, error)
	EventsForPaymentFromSequence(ctx context.Context, paymentID string, fromSequence eventstore.SequenceNumberUint) (eventstore.Events, error)
	EventsInRange(ctx context.Context, from, until time.Time) (eventstore.Events, error)
}

// Service is the replay orchestration layer.
type Service struct {
	store  ReadStore
	logger eventstore.Logger
}

// Option defines a functional option for configuring the replay Service.
type Option func(*Service)

// WithLogger sets the logger for the Service.
func WithLogger(logger eventstore.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a replay Service over the given store.
func NewService(store ReadStore, options ...Option) *Service {
	s := &Service{store: store}

	for _, option := range options {
		option(s)
	}

	return s
}

// ReplayPayment reconstructs one aggregate from its full history.
//
// An aggregate with no events yields a placeholder snapshot, not an error,
// so idempotent polling of not-yet-existing payments stays simple.
func (s *Service) ReplayPayment(ctx context.Context, paymentID string) (projection.PaymentSnapshot, error) {
	history, err := s.store.EventsForPayment(ctx, paymentID)
	if err != nil {
		return projection.PaymentSnapshot{}, s.replayError(paymentID, err)
	}

	return s.reconstruct(paymentID, history)
}

// ReplayPaymentFromSequence reconstructs one aggregate from a resume point:
// only events with a sequence number of at least fromSequence are folded.
func (s *Service) ReplayPaymentFromSequence(
	ctx context.Context,
	paymentID string,
	fromSequence eventstore.SequenceNumberUint,
) (projection.PaymentSnapshot, error) {

	history, err := s.store.EventsForPaymentFromSequence(ctx, paymentID, fromSequence)
	if err != nil {
		return projection.PaymentSnapshot{}, s.replayError(paymentID, err)
	}

	return s.reconstruct(paymentID, history)
}

// ReplayPaymentInRange reconstructs one aggregate from the events inside a
// time window. A zero bound is open.
func (s *Service) ReplayPaymentInRange(
	ctx context.Context,
	paymentID string,
	from time.Time,
	until time.Time,
) (projection.PaymentSnapshot, error) {

	history, err := s.store.EventsForPaymentInRange(ctx, paymentID, from, until)
	if err != nil {
		return projection.PaymentSnapshot{}, s.replayError(paymentID, err)
	}

	return s.reconstruct(paymentID, history)
}

// ReplayPayments reconstructs many aggregates by id. A failure replaying one
// aggregate yields a placeholder snapshot for that aggregate only and never
// aborts the batch. Cancellation abandons the aggregates not yet started;
// snapshots already produced are returned with the context error.
func (s *Service) ReplayPayments(ctx context.Context, paymentIDs []string) (map[string]projection.PaymentSnapshot, error) {
	snapshots := make(map[string]projection.PaymentSnapshot, len(paymentIDs))

	for _, paymentID := range paymentIDs {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return snapshots, ctxErr
		}

		snapshot, err := s.ReplayPayment(ctx, paymentID)
		if err != nil {
			s.logWarnReplayFailed(paymentID, err)
			snapshots[paymentID] = projection.PlaceholderSnapshot(paymentID)
			continue
		}

		snapshots[paymentID] = snapshot
	}

	return snapshots, nil
}

// ReplaySystemSince reconstructs every aggregate present in the event set
// after the given timestamp and derives the system report. This is the
// disaster recovery path; reads may use eventual consistency.
func (s *Service) ReplaySystemSince(ctx context.Context, since time.Time) (projection.SystemReport, error) {
	ctx = eventstore.WithEventualConsistency(ctx)

	events, err := s.store.EventsInRange(ctx, since, time.Time{})
	if err != nil {
		return projection.SystemReport{}, err
	}

	snapshots := projection.ReconstructAll(events)
	report := projection.BuildSystemReport(snapshots)

	if s.logger != nil {
		s.logger.Info(logMsgSystemReplayCompleted,
			logAttrEventCount, len(events),
			logAttrPaymentCount, report.TotalPayments,
		)
	}

	return report, nil
}

// CurrentState returns the present state of one aggregate. It is identical
// to a full replay; stopping early at a terminal event would be a valid
// optimization but must produce the same result, so the simple path is kept.
func (s *Service) CurrentState(ctx context.Context, paymentID string) (projection.PaymentSnapshot, error) {
	return s.ReplayPayment(ctx, paymentID)
}

// AuditPayment runs the sequence validator over one aggregate's stored
// history. Store failures are wrapped in a ReplayError; validation itself
// never fails.
func (s *Service) AuditPayment(ctx context.Context, paymentID string) (projection.ValidationResult, error) {
	history, err := s.store.EventsForPayment(ctx, paymentID)
	if err != nil {
		return projection.ValidationResult{}, s.replayError(paymentID, err)
	}

	return projection.ValidateSequence(paymentID, history), nil
}

// reconstruct folds the history, mapping an empty history to a placeholder
// snapshot and any fold failure to a ReplayError.
func (s *Service) reconstruct(paymentID string, history eventstore.Events) (projection.PaymentSnapshot, error) {
	snapshot, err := projection.Reconstruct(history)
	if err != nil {
		if errors.Is(err, projection.ErrEmptyHistory) {
			return projection.PlaceholderSnapshot(paymentID), nil
		}

		return projection.PaymentSnapshot{}, s.replayError(paymentID, err)
	}

	if s.logger != nil {
		s.logger.Debug(logMsgReplayCompleted,
			logAttrPaymentID, paymentID,
			logAttrEventCount, snapshot.EventCount,
		)
	}

	return snapshot, nil
}

func (s *Service) replayError(paymentID string, err error) error {
	s.logWarnReplayFailed(paymentID, err)

	return &ReplayError{PaymentID: paymentID, Err: err}
}

func (s *Service) logWarnReplayFailed(paymentID string, err error) {
	if s.logger != nil {
		s.logger.Warn(logMsgReplayFailed, logAttrPaymentID, paymentID, logAttrError, err.Error())
	}
}
