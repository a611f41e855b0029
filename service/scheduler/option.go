package scheduler

// Option configures a scheduler
type Option func(s *Service)

// WithConfig sets the configuration
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithSection sets the critical section guarding the run set
func WithSection(section *Section) Option {
	return func(s *Service) {
		s.section = section
	}
}

// WithRunSet sets the run set; a nil run set turns Register into a no-op.
func WithRunSet(runSet *RunSet) Option {
	return func(s *Service) {
		s.runSet = runSet
	}
}
