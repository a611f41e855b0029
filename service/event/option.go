package event

import (
	"github.com/viant/procexec/service/messaging/memory"
)

type Option func(s *Service)

// WithQueueConfig sets the queue configuration per event type name
func WithQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.newQueueConfig = newConfig
	}
}
