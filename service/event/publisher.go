package event

import (
	"context"
	"errors"

	"github.com/viant/procexec/internal/clock"
	"github.com/viant/procexec/service/messaging"
)

// ErrDropped is returned by TryPublish when the queue has no room.
var ErrDropped = errors.New("event: queue full, event dropped")

type Publisher[T any] struct {
	queue messaging.Queue[Event[T]]
}

func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{
		queue: queue,
	}
}

func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	event.CreatedAt = clock.Now()
	return p.queue.Publish(ctx, event)
}

// TryPublish publishes event only if the queue can take it without waiting.
func (p *Publisher[T]) TryPublish(event *Event[T]) error {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Publish(ctx, event)
	if errors.Is(err, context.Canceled) {
		return ErrDropped
	}
	return err
}

func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}
