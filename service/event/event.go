// Package event delivers typed lifecycle notifications through in-memory
// queues to asynchronous listeners.
package event

import (
	"time"

	"github.com/viant/procexec/internal/clock"
)

// Event types
const (
	TypeCreated = "created"
)

// Context identifies what an event is about
type Context struct {
	ContextID string `json:"contextID"`
	EventType string `json:"eventType"`
	Service   string `json:"service"`
}

// Event wraps a payload with its context
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
