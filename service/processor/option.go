package processor

import (
	"github.com/viant/procexec/service/messaging"
)

// Option configures a processor
type Option func(*Service)

// WithMessageQueue sets the request queue
func WithMessageQueue(queue messaging.Queue[Request]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithExecutor sets the executor receiving requests
func WithExecutor(executor Executor) Option {
	return func(s *Service) {
		s.executor = executor
	}
}

// WithWorkers sets the number of worker goroutines
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.WorkerCount = count
	}
}

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
