package event

import (
	"reflect"
	"sync"

	"github.com/viant/procexec/service/messaging/memory"
)

// Service keeps one publisher and at most one listener per payload type.
type Service struct {
	typedPublishers map[reflect.Type]any
	typedListener   map[reflect.Type]any
	mux             sync.RWMutex
	newQueueConfig  func(name string) memory.Config
}

func New(opts ...Option) *Service {
	ret := &Service{
		typedPublishers: make(map[reflect.Type]any),
		typedListener:   make(map[reflect.Type]any),
		newQueueConfig: func(string) memory.Config {
			return memory.DefaultConfig()
		},
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func keyOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// SetListenerOf replaces the listener for T.
func SetListenerOf[T any](s *Service, handler func(*Event[T])) {
	key := keyOf[T]()
	publisher := PublisherOf[T](s)
	listener := NewListener[T](publisher, handler)
	s.mux.Lock()
	prev, ok := s.typedListener[key]
	s.typedListener[key] = listener
	s.mux.Unlock()
	if ok {
		prev.(*Listener[T]).Stop()
	}
	listener.Start()
}

// StopListeners stops every listener.
func (s *Service) StopListeners() {
	s.mux.Lock()
	listeners := s.typedListener
	s.typedListener = make(map[reflect.Type]any)
	s.mux.Unlock()
	for _, listener := range listeners {
		if stopper, ok := listener.(interface{ Stop() }); ok {
			stopper.Stop()
		}
	}
}

// PublisherOf returns a publisher for the provided type
func PublisherOf[T any](s *Service) *Publisher[T] {
	key := keyOf[T]()
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok := s.typedPublishers[key]; ok {
		return ret.(*Publisher[T])
	}
	publisher := NewPublisher[T](memory.NewQueue[Event[T]](s.newQueueConfig(key.String())))
	s.typedPublishers[key] = publisher
	return publisher
}
