package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/finlock/payment-eventstore-go/events"
	"github.com/finlock/payment-eventstore-go/eventstore"
)

const (
	defaultCapacity       = 100
	defaultRetryBaseDelay = 50 * time.Millisecond

	logMsgEventPublished = "event published"
	logMsgPublishRetried = "publish attempt failed, backing off"
	logAttrPaymentID     = "payment_id"
	logAttrEventType     = "event_type"
	logAttrError         = "error"
	logAttrPanic         = "panic"
	logAttrAttempt       = "attempt"
	logAttrBackoffMS     = "backoff_ms"
)

var (
	// ErrSerializationFailed is returned when the payload cannot be encoded.
	// It is surfaced before any store interaction and is never retried.
	ErrSerializationFailed = errors.New("payload serialization failed")

	// ErrCapacityExceeded is returned when the admission-control pool is
	// saturated. Callers should back off and retry later; this is not a data error.
	ErrCapacityExceeded = errors.New("publish capacity exceeded")

	// ErrPublishExhausted is returned when the retry budget is consumed.
	// It is always joined with the last underlying cause.
	ErrPublishExhausted = errors.New("publish retries exhausted")

	// ErrInvalidMaxRetries is returned when a non-positive retry budget is requested.
	ErrInvalidMaxRetries = errors.New("max retries must be positive")

	// ErrNilStore is returned when a Publisher is constructed without a store.
	ErrNilStore = errors.New("event store must not be nil")

	// ErrInvalidCapacity is returned when a non-positive admission capacity is configured.
	ErrInvalidCapacity = errors.New("publish capacity must be positive")
)

// Codec encodes publish payloads to JSON. The default codec uses
// json-iterator; callers with custom encoding supply their own.
type Codec interface {
	Marshal(value any) ([]byte, error)
}

type jsoniterCodec struct{}

func (jsoniterCodec) Marshal(value any) ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(value)
}

// AppendStore is the narrow store contract the publisher needs.
type AppendStore interface {
	Append(ctx context.Context, event eventstore.Event) (eventstore.Event, error)
}

// PublishRequest carries one business fact to be turned into an event.
// Payload may be any encodable value; []byte and json.RawMessage are used verbatim.
type PublishRequest struct {
	PaymentID     string
	EventType     eventstore.EventType
	Payload       any
	CorrelationID string
	ActorID       string
}

// BatchResult reports the outcome of one request within a batch publish.
type BatchResult struct {
	Index int
	Event eventstore.Event
	Err   error
}

// Publisher validates and appends events, then fans them out to broadcasters.
// The admission-control pool is the only shared mutable resource; it is
// adjusted via channel operations with guaranteed release on every exit path.
type Publisher struct {
	store          AppendStore
	broadcasters   []Broadcaster
	codec          Codec
	slots          chan struct{}
	active         atomic.Int64
	retryBaseDelay time.Duration
	logger         eventstore.Logger
	metrics        eventstore.MetricsCollector
}

// Option defines a functional option for configuring a Publisher.
type Option func(*Publisher) error

// WithCapacity sets the admission-control pool size for PublishAsync.
func WithCapacity(capacity int) Option {
	return func(p *Publisher) error {
		if capacity <= 0 {
			return ErrInvalidCapacity
		}

		p.slots = makeSlots(capacity)

		return nil
	}
}

// WithBroadcasters registers fan-out targets notified after durable appends.
func WithBroadcasters(broadcasters ...Broadcaster) Option {
	return func(p *Publisher) error {
		p.broadcasters = append(p.broadcasters, broadcasters...)
		return nil
	}
}

// WithCodec sets a custom payload codec.
func WithCodec(codec Codec) Option {
	return func(p *Publisher) error {
		p.codec = codec
		return nil
	}
}

// WithLogger sets the logger for the Publisher.
func WithLogger(logger eventstore.Logger) Option {
	return func(p *Publisher) error {
		p.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Publisher.
func WithMetrics(metrics eventstore.MetricsCollector) Option {
	return func(p *Publisher) error {
		p.metrics = metrics
		return nil
	}
}

// WithRetryBaseDelay sets the base delay for the backoff schedule of
// PublishWithRetry. The delay before attempt n+1 is base * n.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(p *Publisher) error {
		p.retryBaseDelay = delay
		return nil
	}
}

// NewPublisher creates a Publisher over the given store with optional configuration.
func NewPublisher(store AppendStore, options ...Option) (*Publisher, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	p := &Publisher{
		store:          store,
		codec:          jsoniterCodec{},
		slots:          makeSlots(defaultCapacity),
		retryBaseDelay: defaultRetryBaseDelay,
	}

	for _, option := range options {
		if err := option(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func makeSlots(capacity int) chan struct{} {
	slots := make(chan struct{}, capacity)
	for i := 0; i < capacity; i++ {
		slots <- struct{}{}
	}

	return slots
}

// Publish serializes the payload, appends the event durably, and broadcasts it.
//
// It fails with ErrSerializationFailed before any store interaction if the
// payload cannot be encoded, and with the store's append error if the write
// is rejected; in both cases no broadcast occurs.
func (p *Publisher) Publish(ctx context.Context, request PublishRequest) (eventstore.Event, error) {
	p.active.Add(1)
	defer p.active.Add(-1)

	return p.publish(ctx, request)
}

func (p *Publisher) publish(ctx context.Context, request PublishRequest) (eventstore.Event, error) {
	var empty eventstore.Event

	event, buildErr := p.buildEvent(request)
	if buildErr != nil {
		return empty, buildErr
	}

	appended, appendErr := p.store.Append(ctx, event)
	if appendErr != nil {
		return empty, appendErr
	}

	p.broadcast(ctx, appended)
	p.incrementCounter("publisher_events_published", map[string]string{"event_type": appended.EventType.String()})

	if p.logger != nil {
		p.logger.Info(logMsgEventPublished,
			logAttrPaymentID, appended.PaymentID,
			logAttrEventType, appended.EventType.String(),
		)
	}

	return appended, nil
}

// buildEvent serializes the payload and constructs the store-ready event.
func (p *Publisher) buildEvent(request PublishRequest) (eventstore.Event, error) {
	var empty eventstore.Event

	payloadJSON, serializeErr := p.serializePayload(request.Payload)
	if serializeErr != nil {
		return empty, serializeErr
	}

	event, buildErr := eventstore.BuildEventWithTracing(
		request.PaymentID,
		request.EventType,
		payloadJSON,
		request.CorrelationID,
		request.ActorID,
	)
	if buildErr != nil {
		return empty, buildErr
	}

	return event, nil
}

func (p *Publisher) serializePayload(payload any) ([]byte, error) {
	switch typed := payload.(type) {
	case nil:
		return []byte("{}"), nil

	case []byte:
		if !json.Valid(typed) {
			return nil, errors.Join(ErrSerializationFailed, eventstore.ErrInvalidPayloadJSON)
		}
		return typed, nil

	case json.RawMessage:
		if !json.Valid(typed) {
			return nil, errors.Join(ErrSerializationFailed, eventstore.ErrInvalidPayloadJSON)
		}
		return typed, nil

	case events.Event:
		payloadJSON, err := typed.PayloadToJSON()
		if err != nil {
			return nil, errors.Join(ErrSerializationFailed, err)
		}
		return payloadJSON, nil

	default:
		payloadJSON, err := p.codec.Marshal(payload)
		if err != nil {
			return nil, errors.Join(ErrSerializationFailed, err)
		}
		return payloadJSON, nil
	}
}

// PublishBatch appends a batch of requests as one logical unit with
// at-least-one-effort semantics: a failing request is reported in its
// BatchResult and the remaining requests are still attempted. Cancellation
// abandons the not-yet-started remainder; already appended events stay valid.
func (p *Publisher) PublishBatch(ctx context.Context, requests []PublishRequest) []BatchResult {
	results := make([]BatchResult, len(requests))

	for i, request := range requests {
		if ctxErr := ctx.Err(); ctxErr != nil {
			for j := i; j < len(requests); j++ {
				results[j] = BatchResult{Index: j, Err: ctxErr}
			}
			return results
		}

		event, err := p.Publish(ctx, request)
		results[i] = BatchResult{Index: i, Event: event, Err: err}
	}

	return results
}

// PublishWithPriority partitions the batch by the event kind's priority
// attribute and fully completes the high-priority set (appended and
// broadcast) before any normal request starts. Each set runs with its own
// concurrency. Results are indexed by the original request positions.
func (p *Publisher) PublishWithPriority(ctx context.Context, requests []PublishRequest) []BatchResult {
	results := make([]BatchResult, len(requests))

	var highPriority, normal []int
	for i, request := range requests {
		if request.EventType.IsHighPriority() {
			highPriority = append(highPriority, i)
		} else {
			normal = append(normal, i)
		}
	}

	p.publishSet(ctx, requests, highPriority, results)
	p.publishSet(ctx, requests, normal, results)

	return results
}

// publishSet publishes the selected requests concurrently and waits for all
// of them to complete before returning.
func (p *Publisher) publishSet(ctx context.Context, requests []PublishRequest, indexes []int, results []BatchResult) {
	var wg sync.WaitGroup

	for _, index := range indexes {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			if ctxErr := ctx.Err(); ctxErr != nil {
				results[index] = BatchResult{Index: index, Err: ctxErr}
				return
			}

			event, err := p.Publish(ctx, requests[index])
			results[index] = BatchResult{Index: index, Event: event, Err: err}
		}(index)
	}

	wg.Wait()
}

// PublishWithRetry publishes with up to maxRetries attempts.
//
// The backoff before attempt n+1 is retryBaseDelay * n and is cancellable,
// so the caller's deadline is respected. Serialization failures are never
// retried. After the last attempt it fails with ErrPublishExhausted joined
// with the final cause.
func (p *Publisher) PublishWithRetry(ctx context.Context, request PublishRequest, maxRetries int) (eventstore.Event, error) {
	var empty eventstore.Event

	if maxRetries <= 0 {
		return empty, ErrInvalidMaxRetries
	}

	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			backoff := p.retryBaseDelay * time.Duration(attempt-1)

			if p.logger != nil {
				p.logger.Warn(logMsgPublishRetried,
					logAttrPaymentID, request.PaymentID,
					logAttrAttempt, attempt-1,
					logAttrBackoffMS, backoff.Milliseconds(),
					logAttrError, lastErr.Error(),
				)
			}

			select {
			case <-time.After(backoff):
				// continue with retry
			case <-ctx.Done():
				return empty, ctx.Err()
			}
		}

		event, err := p.Publish(ctx, request)
		if err == nil {
			return event, nil
		}
		lastErr = err

		if errors.Is(err, ErrSerializationFailed) {
			return empty, err // permanent failure, retrying cannot help
		}

		p.incrementCounter("publisher_retry_attempts", map[string]string{"event_type": request.EventType.String()})
	}

	p.incrementCounter("publisher_retries_exhausted", map[string]string{"event_type": request.EventType.String()})

	return empty, errors.Join(ErrPublishExhausted, lastErr)
}

// ActivePublishes returns the number of publishes currently in flight.
func (p *Publisher) ActivePublishes() int64 {
	return p.active.Load()
}

// AvailableCapacity returns the number of free admission-control slots.
func (p *Publisher) AvailableCapacity() int {
	return len(p.slots)
}

// Capacity returns the total admission-control pool size.
func (p *Publisher) Capacity() int {
	return cap(p.slots)
}

func (p *Publisher) logError(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}

func (p *Publisher) incrementCounter(metric string, labels map[string]string) {
	if p.metrics != nil {
		p.metrics.IncrementCounter(metric, labels)
	}
}
