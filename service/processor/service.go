package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/viant/procexec/service/messaging"
	"github.com/viant/procexec/tracing"
)

// Request asks for a process to be created
type Request struct {
	Source           string   `json:"source"`
	WorkingDirectory string   `json:"workingDirectory"`
	Args             []string `json:"args,omitempty"`
}

// Executor creates processes
type Executor interface {
	Execute(ctx context.Context, source, workingDirectory string, args []string)
}

// Config represents processor configuration
type Config struct {
	// WorkerCount is the number of workers draining the queue
	WorkerCount int `json:"workers" yaml:"workers"`
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{
		WorkerCount: 2,
	}
}

// Service runs spawn requests
type Service struct {
	config   Config
	queue    messaging.Queue[Request]
	executor Executor
	workerWg sync.WaitGroup
	mux      sync.Mutex
	cancel   context.CancelFunc
}

// Submit publishes a request for asynchronous execution
func (s *Service) Submit(ctx context.Context, request *Request) error {
	if request == nil || request.Source == "" {
		return fmt.Errorf("request source was empty")
	}
	return s.queue.Publish(ctx, request)
}

// Start launches the workers; it returns immediately.
func (s *Service) Start(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.cancel != nil {
		return fmt.Errorf("processor already started")
	}
	ctx, s.cancel = context.WithCancel(ctx)
	for i := 0; i < s.config.WorkerCount; i++ {
		s.workerWg.Add(1)
		go s.work(ctx, i)
	}
	return nil
}

// Shutdown stops the workers and waits for in-flight requests.
func (s *Service) Shutdown() {
	s.mux.Lock()
	cancel := s.cancel
	s.mux.Unlock()
	if cancel != nil {
		cancel()
	}
	s.workerWg.Wait()
}

func (s *Service) work(ctx context.Context, id int) {
	defer s.workerWg.Done()
	for {
		message, err := s.queue.Consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			log.Printf("processor worker %d: failed to consume request: %v", id, err)
			continue
		}
		if ctx.Err() != nil {
			if err := message.Nack(ctx.Err()); err != nil {
				log.Printf("processor worker %d: failed to return request: %v", id, err)
			}
			return
		}
		request := message.T()
		spanCtx, span := tracing.StartSpan(ctx, "processor.request", "CONSUMER")
		span.WithAttributes(map[string]string{"source": request.Source})
		s.executor.Execute(spanCtx, request.Source, request.WorkingDirectory, request.Args)
		tracing.EndSpan(span, nil)
		if err := message.Ack(); err != nil {
			log.Printf("processor worker %d: failed to ack request: %v", id, err)
		}
	}
}

// New creates a processor
func New(options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig()}
	for _, opt := range options {
		opt(s)
	}
	if s.executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if s.queue == nil {
		return nil, fmt.Errorf("message queue is required")
	}
	if s.config.WorkerCount <= 0 {
		return nil, fmt.Errorf("processor.workers must be > 0")
	}
	return s, nil
}
