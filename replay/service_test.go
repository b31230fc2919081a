package replay_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlock/payment-eventstore-go/eventstore"
	"github.com/finlock/payment-eventstore-go/eventstore/memoryengine"
	"github.com/finlock/payment-eventstore-go/projection"
	"github.com/finlock/payment-eventstore-go/replay"
)

func Test_ReplayPayment_When_FullHistoryExists(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	service := replay.NewService(store)

	paymentID := "pay-replay-001"
	appendLifecycle(t, store, paymentID)

	// act
	snapshot, err := service.ReplayPayment(ctx, paymentID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, paymentID, snapshot.PaymentID)
	assert.Equal(t, projection.StatusCaptured, snapshot.CurrentStatus)
	assert.True(t, snapshot.IsTerminal)
	assert.Equal(t, 3, snapshot.EventCount)
}

func Test_ReplayPayment_When_ReplayedTwice_Then_SnapshotsAreIdentical(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	service := replay.NewService(store)

	paymentID := "pay-replay-002"
	appendLifecycle(t, store, paymentID)

	// act
	first, err1 := service.ReplayPayment(ctx, paymentID)
	second, err2 := service.ReplayPayment(ctx, paymentID)

	// assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}

func Test_ReplayPayment_When_HistoryIsEmpty_Then_PlaceholderIsReturned(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	service := replay.NewService(store)

	// act
	snapshot, err := service.ReplayPayment(ctx, "pay-unknown")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "pay-unknown", snapshot.PaymentID)
	assert.Equal(t, projection.StatusUnknown, snapshot.CurrentStatus)
	assert.Equal(t, 0, snapshot.EventCount)
}

func Test_ReplayPayment_When_StoreFails_Then_ReplayErrorCarriesPaymentID(t *testing.T) {
	// arrange
	ctx := context.Background()
	cause := errors.New("connection refused")
	service := replay.NewService(failingReadStore{err: cause})

	// act
	_, err := service.ReplayPayment(ctx, "pay-broken")

	// assert
	require.Error(t, err)

	var replayErr *replay.ReplayError
	require.ErrorAs(t, err, &replayErr)
	assert.Equal(t, "pay-broken", replayErr.PaymentID)
	assert.ErrorIs(t, err, cause)
}

func Test_ReplayPaymentFromSequence_When_ResumingMidStream(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	service := replay.NewService(store)

	paymentID := "pay-replay-003"
	stored := appendLifecycle(t, store, paymentID)

	// act
	snapshot, err := service.ReplayPaymentFromSequence(ctx, paymentID, stored[1].SequenceNumber)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.EventCount)
	assert.Equal(t, projection.StatusCaptured, snapshot.CurrentStatus)
}

func Test_ReplayPaymentInRange_When_WindowExcludesLaterEvents(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	service := replay.NewService(store)

	paymentID := "pay-replay-004"
	appendEvent(t, store, paymentID, eventstore.PaymentInitiated, `{"amount": 100, "currency": "USD"}`)
	authorized := appendEvent(t, store, paymentID, eventstore.PaymentAuthorized, `{"processor_reference": "ref-xyz"}`)
	time.Sleep(2 * time.Millisecond)
	appendEvent(t, store, paymentID, eventstore.PaymentCaptured, `{}`)
	cutoff := authorized.OccurredAt

	// act
	snapshot, err := service.ReplayPaymentInRange(ctx, paymentID, time.Time{}, cutoff)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.EventCount)
	assert.Equal(t, projection.StatusAuthorized, snapshot.CurrentStatus)
	assert.False(t, snapshot.IsTerminal)
}

func Test_ReplayPayments_When_OneAggregateHasNoEvents(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	service := replay.NewService(store)

	appendLifecycle(t, store, "pay-batch-1")
	appendLifecycle(t, store, "pay-batch-2")

	// act
	snapshots, err := service.ReplayPayments(ctx, []string{"pay-batch-1", "pay-missing", "pay-batch-2"})

	// assert
	require.NoError(t, err)
	require.Len(t, snapshots, 3)
	assert.Equal(t, projection.StatusCaptured, snapshots["pay-batch-1"].CurrentStatus)
	assert.Equal(t, projection.StatusCaptured, snapshots["pay-batch-2"].CurrentStatus)
	assert.Equal(t, projection.StatusUnknown, snapshots["pay-missing"].CurrentStatus)
}

func Test_ReplayPayments_When_ContextIsCancelled_Then_PartialResultsAreReturned(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	service := replay.NewService(store)
	appendLifecycle(t, store, "pay-cancel-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	snapshots, err := service.ReplayPayments(ctx, []string{"pay-cancel-1"})

	// assert
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, snapshots)
}

func Test_ReplaySystemSince_When_MixedOutcomesExist(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	service := replay.NewService(store)

	appendLifecycle(t, store, "pay-dr-captured")
	appendEvent(t, store, "pay-dr-failed", eventstore.PaymentInitiated, `{"amount": 50, "currency": "EUR"}`)
	appendEvent(t, store, "pay-dr-failed", eventstore.PaymentFailed, `{}`)
	appendEvent(t, store, "pay-dr-pending", eventstore.PaymentInitiated, `{"amount": 75, "currency": "GBP"}`)

	// act
	report, err := service.ReplaySystemSince(ctx, time.Time{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalPayments)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Pending)
	assert.InDelta(t, 1.0/3.0, report.SuccessRatio, 0.0001)
}

func Test_CurrentState_When_AggregateIsTerminal(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	service := replay.NewService(store)

	paymentID := "pay-current-001"
	appendLifecycle(t, store, paymentID)

	// act
	current, err := service.CurrentState(ctx, paymentID)
	full, replayErr := service.ReplayPayment(ctx, paymentID)

	// assert
	require.NoError(t, err)
	require.NoError(t, replayErr)
	assert.Equal(t, full, current)
}

func Test_AuditPayment_When_HistoryIsValid(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	service := replay.NewService(store)

	paymentID := "pay-audit-001"
	appendLifecycle(t, store, paymentID)

	// act
	result, err := service.AuditPayment(ctx, paymentID)

	// assert
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Violations)
}

func Test_AuditPayment_When_HistoryViolatesOrdering(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	service := replay.NewService(store)

	paymentID := "pay-audit-002"
	appendEvent(t, store, paymentID, eventstore.PaymentAuthorized, `{"processor_reference": "ref-1"}`)

	// act
	result, err := service.AuditPayment(ctx, paymentID)

	// assert
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Violations)
}

/*** Test helpers and doubles ***/

func appendLifecycle(t *testing.T, store *memoryengine.EventStore, paymentID string) eventstore.Events {
	t.Helper()

	stored := eventstore.Events{
		appendEvent(t, store, paymentID, eventstore.PaymentInitiated, `{"amount": 100, "currency": "USD"}`),
		appendEvent(t, store, paymentID, eventstore.PaymentAuthorized, `{"processor_reference": "ref-xyz"}`),
		appendEvent(t, store, paymentID, eventstore.PaymentCaptured, `{}`),
	}

	return stored
}

func appendEvent(
	t *testing.T,
	store *memoryengine.EventStore,
	paymentID string,
	eventType eventstore.EventType,
	payloadJSON string,
) eventstore.Event {

	t.Helper()

	event, err := eventstore.BuildEvent(paymentID, eventType, []byte(payloadJSON))
	require.NoError(t, err)

	stored, err := store.Append(context.Background(), event)
	require.NoError(t, err)

	return stored
}

type failingReadStore struct {
	err error
}

func (f failingReadStore) EventsForPayment(_ context.Context, _ string) (eventstore.Events, error) {
	return nil, f.err
}

func (f failingReadStore) EventsForPaymentInRange(_ context.Context, _ string, _, _ time.Time) (eventstore.Events, error) {
	return nil, f.err
}

func (f failingReadStore) EventsForPaymentFromSequence(_ context.Context, _ string, _ eventstore.SequenceNumberUint) (eventstore.Events, error) {
	return nil, f.err
}

func (f failingReadStore) EventsInRange(_ context.Context, _, _ time.Time) (eventstore.Events, error) {
	return nil, f.err
}
