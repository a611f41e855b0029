package event

import (
	"context"
	"log"
	"sync"
)

// Listener hands every consumed event to handler on its own goroutine.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancel    context.CancelFunc
	done      sync.WaitGroup
}

func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Stop ends the consume loop and waits for the handler in flight.
func (l *Listener[T]) Stop() {
	l.cancel()
	l.done.Wait()
}

func (l *Listener[T]) Start() {
	l.done.Add(1)
	go func() {
		defer l.done.Done()
		for {
			event, err := l.publisher.Consume(l.ctx)
			if l.ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Printf("event: failed to consume: %v", err)
				continue
			}
			if event != nil {
				l.handler(event)
			}
		}
	}()
}
