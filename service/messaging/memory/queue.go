// Package memory implements an in-process, bounded messaging.Queue.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/viant/procexec/internal/idgen"
	"github.com/viant/procexec/service/messaging"
)

// ErrProcessed is returned when a message is acknowledged twice.
var ErrProcessed = errors.New("message already processed")

// Config for memory queue implementation
type Config struct {
	// MaxRetries is how many times a nacked message is redelivered
	MaxRetries int `json:"maxRetries" yaml:"maxRetries"`
	// QueueBuffer bounds the number of pending messages
	QueueBuffer int `json:"queueBuffer" yaml:"queueBuffer"`
}

// DefaultConfig returns a standard configuration for memory queue
func DefaultConfig() Config {
	return Config{
		MaxRetries:  1,
		QueueBuffer: 64,
	}
}

// Message is a queued payload
type Message[T any] struct {
	id        string
	payload   T
	queue     *Queue[T]
	attempts  int
	mux       sync.Mutex
	processed bool
}

// ID returns the message identifier
func (m *Message[T]) ID() string {
	return m.id
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack acknowledges the message
func (m *Message[T]) Ack() error {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.processed {
		return ErrProcessed
	}
	m.processed = true
	return nil
}

// Nack requeues the message while retries remain; otherwise it is dropped.
func (m *Message[T]) Nack(error) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.processed {
		return ErrProcessed
	}
	m.processed = true
	if m.attempts > m.queue.config.MaxRetries {
		return nil
	}
	retry := &Message[T]{id: m.id, payload: m.payload, queue: m.queue, attempts: m.attempts + 1}
	select {
	case m.queue.messages <- retry:
	default:
	}
	return nil
}

// Queue implements an in-memory messaging.Queue
type Queue[T any] struct {
	messages chan *Message[T]
	config   Config
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.QueueBuffer),
		config:   config,
	}
}

// Publish enqueues a copy of t, blocking while the queue is full. A message
// fitting the buffer is accepted even when ctx is already done.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if t == nil {
		return errors.New("payload was nil")
	}
	msg := &Message[T]{id: idgen.New(), payload: *t, queue: q, attempts: 1}
	select {
	case q.messages <- msg:
		return nil
	default:
	}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume retrieves a single message
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the number of pending messages
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
