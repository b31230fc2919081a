package publisher

import (
	"context"

	"github.com/finlock/payment-eventstore-go/eventstore"
)

const (
	logMsgBroadcastFailed   = "broadcast handler failed"
	logMsgBroadcastPanicked = "broadcast handler panicked"
)

// Broadcaster delivers an already-persisted event to zero or more independent
// consumers. Implementations must tolerate redelivery; the publisher logs and
// continues when a broadcaster fails, it never fails the publish.
type Broadcaster interface {
	Broadcast(ctx context.Context, event eventstore.Event) error
}

// BroadcasterFunc adapts a plain function to the Broadcaster interface.
type BroadcasterFunc func(ctx context.Context, event eventstore.Event) error

// Broadcast calls the wrapped function.
func (f BroadcasterFunc) Broadcast(ctx context.Context, event eventstore.Event) error {
	return f(ctx, event)
}

// broadcast fans the event out to every configured broadcaster.
// A broadcaster error or panic is logged and never propagated: the event is
// already durable, and one failing consumer must not block the others.
func (p *Publisher) broadcast(ctx context.Context, event eventstore.Event) {
	for _, broadcaster := range p.broadcasters {
		p.broadcastToOne(ctx, broadcaster, event)
	}
}

func (p *Publisher) broadcastToOne(ctx context.Context, broadcaster Broadcaster, event eventstore.Event) {
	defer func() {
		if recovered := recover(); recovered != nil {
			p.logError(logMsgBroadcastPanicked,
				logAttrPaymentID, event.PaymentID,
				logAttrEventType, event.EventType.String(),
				logAttrPanic, recovered,
			)
		}
	}()

	if err := broadcaster.Broadcast(ctx, event); err != nil {
		p.logError(logMsgBroadcastFailed,
			logAttrPaymentID, event.PaymentID,
			logAttrEventType, event.EventType.String(),
			logAttrError, err.Error(),
		)
	}
}
