package memoryengine_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlock/payment-eventstore-go/eventstore"
	"github.com/finlock/payment-eventstore-go/eventstore/memoryengine"
)

func Test_Append_AssignsIDTimestampAndSequence(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	ctx := context.Background()
	event := buildEvent(t, uuid.New().String(), eventstore.PaymentInitiated)

	// act
	appended, err := store.Append(ctx, event)

	// assert
	require.NoError(t, err)
	assert.NotEmpty(t, appended.EventID)
	assert.False(t, appended.OccurredAt.IsZero())
	assert.Equal(t, eventstore.SequenceNumberUint(1), appended.SequenceNumber)
}

func Test_EventsForPayment_ReturnsHistoryInAppendOrder(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	ctx := context.Background()
	paymentID := uuid.New().String()

	types := []eventstore.EventType{
		eventstore.PaymentInitiated,
		eventstore.PaymentAuthorized,
		eventstore.PaymentCaptured,
	}
	for _, eventType := range types {
		_, err := store.Append(ctx, buildEvent(t, paymentID, eventType))
		require.NoError(t, err)
	}

	// act
	history, err := store.EventsForPayment(ctx, paymentID)

	// assert
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, event := range history {
		assert.Equal(t, types[i], event.EventType)
	}
	assert.True(t, history[0].SequenceNumber < history[1].SequenceNumber)
	assert.True(t, history[1].SequenceNumber < history[2].SequenceNumber)
}

func Test_ConcurrentAppends_NoEventsDroppedOrDuplicated(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	ctx := context.Background()

	const writers = 8
	const appendsPerWriter = 50
	paymentIDs := make([]string, writers)
	for i := range paymentIDs {
		paymentIDs[i] = uuid.New().String()
	}

	// act - M writers appending concurrently, each to its own aggregate plus a shared one
	sharedPaymentID := uuid.New().String()
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < appendsPerWriter; i++ {
				_, err := store.Append(ctx, buildEvent(t, paymentIDs[w], eventstore.WebhookReceived))
				assert.NoError(t, err)
				_, err = store.Append(ctx, buildEvent(t, sharedPaymentID, eventstore.WebhookReceived))
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	// assert - every aggregate reads back complete, ordered, and duplicate-free
	shared, err := store.EventsForPayment(ctx, sharedPaymentID)
	require.NoError(t, err)
	assert.Len(t, shared, writers*appendsPerWriter)

	seen := make(map[eventstore.SequenceNumberUint]struct{})
	for i := 1; i < len(shared); i++ {
		assert.Less(t, shared[i-1].SequenceNumber, shared[i].SequenceNumber)
	}
	for _, event := range shared {
		_, duplicate := seen[event.SequenceNumber]
		assert.False(t, duplicate)
		seen[event.SequenceNumber] = struct{}{}
	}

	for w := 0; w < writers; w++ {
		history, historyErr := store.EventsForPayment(ctx, paymentIDs[w])
		require.NoError(t, historyErr)
		assert.Len(t, history, appendsPerWriter)
	}
}

func Test_EventsForPaymentFromSequence_ResumesReplay(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	ctx := context.Background()
	paymentID := uuid.New().String()

	var resumeFrom eventstore.SequenceNumberUint
	for i := 0; i < 5; i++ {
		appended, err := store.Append(ctx, buildEvent(t, paymentID, eventstore.WebhookReceived))
		require.NoError(t, err)
		if i == 2 {
			resumeFrom = appended.SequenceNumber
		}
	}

	// act
	resumed, err := store.EventsForPaymentFromSequence(ctx, paymentID, resumeFrom)

	// assert
	require.NoError(t, err)
	assert.Len(t, resumed, 3)
	assert.Equal(t, resumeFrom, resumed[0].SequenceNumber)
}

func Test_EventsForPaymentOfType_FiltersByType(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	ctx := context.Background()
	paymentID := uuid.New().String()

	for _, eventType := range []eventstore.EventType{
		eventstore.PaymentInitiated,
		eventstore.WebhookReceived,
		eventstore.WebhookReceived,
		eventstore.PaymentCaptured,
	} {
		_, err := store.Append(ctx, buildEvent(t, paymentID, eventType))
		require.NoError(t, err)
	}

	// act
	webhooks, err := store.EventsForPaymentOfType(ctx, paymentID, eventstore.WebhookReceived)

	// assert
	require.NoError(t, err)
	assert.Len(t, webhooks, 2)
}

func Test_EventsForCorrelationID_SpansAggregates(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	ctx := context.Background()
	correlationID := uuid.New().String()

	for i := 0; i < 3; i++ {
		event, err := eventstore.BuildEventWithTracing(
			uuid.New().String(), eventstore.RoutingSelected, []byte(`{}`), correlationID, "")
		require.NoError(t, err)
		_, err = store.Append(ctx, event)
		require.NoError(t, err)
	}
	_, err := store.Append(ctx, buildEvent(t, uuid.New().String(), eventstore.RoutingSelected))
	require.NoError(t, err)

	// act
	correlated, err := store.EventsForCorrelationID(ctx, correlationID)

	// assert
	require.NoError(t, err)
	assert.Len(t, correlated, 3)
}

func Test_LatestEventForPayment(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	ctx := context.Background()
	paymentID := uuid.New().String()

	_, err := store.LatestEventForPayment(ctx, paymentID)
	assert.ErrorIs(t, err, eventstore.ErrNoEventsFound)

	_, appendErr := store.Append(ctx, buildEvent(t, paymentID, eventstore.PaymentInitiated))
	require.NoError(t, appendErr)
	_, appendErr = store.Append(ctx, buildEvent(t, paymentID, eventstore.PaymentAuthorized))
	require.NoError(t, appendErr)

	// act
	latest, err := store.LatestEventForPayment(ctx, paymentID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, eventstore.PaymentAuthorized, latest.EventType)
}

func Test_DeleteEventsBefore_RemovesOnlyOlderEvents(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	ctx := context.Background()

	old := buildEvent(t, uuid.New().String(), eventstore.PaymentSettled)
	old.OccurredAt = time.Now().UTC().Add(-48 * time.Hour)
	_, err := store.Append(ctx, old)
	require.NoError(t, err)

	recentPaymentID := uuid.New().String()
	_, err = store.Append(ctx, buildEvent(t, recentPaymentID, eventstore.PaymentInitiated))
	require.NoError(t, err)

	// act
	removed, err := store.DeleteEventsBefore(ctx, time.Now().UTC().Add(-24*time.Hour))

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := store.EventsInRange(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
	assert.Equal(t, recentPaymentID, remaining[0].PaymentID)
}

func buildEvent(t *testing.T, paymentID string, eventType eventstore.EventType) eventstore.Event {
	t.Helper()

	event, err := eventstore.BuildEvent(paymentID, eventType, []byte(fmt.Sprintf(`{"seq_hint": %d}`, time.Now().UnixNano())))
	require.NoError(t, err)

	return event
}
