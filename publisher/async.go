package publisher

import (
	"context"

	"github.com/finlock/payment-eventstore-go/eventstore"
)

// AsyncResult carries the outcome of an asynchronous publish.
type AsyncResult struct {
	Event eventstore.Event
	Err   error
}

// PublishAsync performs the publish on a background goroutine after acquiring
// one slot from the bounded admission-control pool.
//
// It fails fast with ErrCapacityExceeded when the pool is saturated rather
// than queuing unboundedly. The slot is released on every exit path. The
// returned channel is buffered and receives exactly one result.
func (p *Publisher) PublishAsync(ctx context.Context, request PublishRequest) (<-chan AsyncResult, error) {
	select {
	case <-p.slots:
		// slot acquired
	default:
		p.incrementCounter("publisher_capacity_exceeded", map[string]string{"event_type": request.EventType.String()})
		return nil, ErrCapacityExceeded
	}

	p.active.Add(1)
	resultCh := make(chan AsyncResult, 1)

	go func() {
		defer func() {
			p.active.Add(-1)
			p.slots <- struct{}{}
		}()

		event, err := p.publish(ctx, request)
		resultCh <- AsyncResult{Event: event, Err: err}
	}()

	return resultCh, nil
}
