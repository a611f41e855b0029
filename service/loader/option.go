package loader

// Option configures a loader
type Option func(s *Service)

// WithConfig sets the configuration
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithDebug enables logging of rejected loads
func WithDebug(debug bool) Option {
	return func(s *Service) {
		s.config.Debug = debug
	}
}
