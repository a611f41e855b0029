// Package scheduler owns the run set. It is the only service allowed to
// mutate it: contexts are appended through Register inside the no-interrupts
// critical section, and a preemption tick walks the set round-robin under the
// same section.
package scheduler

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/viant/procexec/runtime/execution"
	"github.com/viant/procexec/tracing"
)

// Registrar publishes new contexts to the scheduler.
type Registrar interface {
	Register(aContext *execution.Context)
}

// Config represents scheduler configuration
type Config struct {
	// Quantum is the interval between preemption ticks
	Quantum time.Duration `json:"quantum" yaml:"quantum"`
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Quantum: 10 * time.Millisecond,
	}
}

// Service schedules contexts
type Service struct {
	config       Config
	section      *Section
	runSet       *RunSet
	cursor       int
	current      *execution.Context
	ticks        uint64
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

var _ Registrar = (*Service)(nil)

// Register appends aContext to the run set. Interrupts are suppressed for the
// append only and restored to their prior state afterwards. A scheduler
// without a run set ignores the call.
func (s *Service) Register(aContext *execution.Context) {
	prior := s.section.StartNoInts()
	if s.runSet != nil {
		s.runSet.Push(aContext)
	}
	s.section.EndNoInts(prior)
}

// Tick performs one preemption step: the next context in round-robin order
// becomes current. The step is skipped while interrupts are disabled.
func (s *Service) Tick() *execution.Context {
	prior := s.section.StartNoInts()
	defer s.section.EndNoInts(prior)
	if !prior || s.runSet == nil || s.runSet.Len() == 0 {
		return s.current
	}
	s.ticks++
	if s.cursor >= s.runSet.Len() {
		s.cursor = 0
	}
	next := s.runSet.At(s.cursor)
	s.cursor++
	if s.current != nil && s.current != next {
		s.current.SetState(execution.StateReady)
	}
	next.SetState(execution.StateRunning)
	s.current = next
	return next
}

// Current returns the context selected by the last tick.
func (s *Service) Current() *execution.Context {
	prior := s.section.StartNoInts()
	defer s.section.EndNoInts(prior)
	return s.current
}

// Ticks returns the number of completed preemption steps.
func (s *Service) Ticks() uint64 {
	prior := s.section.StartNoInts()
	defer s.section.EndNoInts(prior)
	return s.ticks
}

// Len returns the run set length.
func (s *Service) Len() int {
	prior := s.section.StartNoInts()
	defer s.section.EndNoInts(prior)
	if s.runSet == nil {
		return 0
	}
	return s.runSet.Len()
}

// Contexts returns a copy of the run set.
func (s *Service) Contexts() []*execution.Context {
	prior := s.section.StartNoInts()
	defer s.section.EndNoInts(prior)
	if s.runSet == nil {
		return nil
	}
	return s.runSet.snapshot()
}

// Section returns the critical section guarding the run set.
func (s *Service) Section() *Section {
	return s.section
}

// Start runs the preemption loop until ctx is done or Shutdown is called.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.config.Quantum)
	defer ticker.Stop()
	ctx, span := tracing.StartSpan(ctx, "scheduler.run", "INTERNAL")
	defer func() {
		span.WithAttributes(map[string]string{"ticks": strconv.FormatUint(s.Ticks(), 10)})
		tracing.EndSpan(span, nil)
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.shutdownCh:
			return nil
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Shutdown stops the preemption loop.
func (s *Service) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownCh)
	})
}

// New creates a scheduler with an empty run set guarded by Default.
func New(options ...Option) *Service {
	ret := &Service{
		config:     DefaultConfig(),
		section:    Default,
		runSet:     NewRunSet(),
		shutdownCh: make(chan struct{}),
	}
	for _, option := range options {
		option(ret)
	}
	if ret.config.Quantum <= 0 {
		ret.config.Quantum = DefaultConfig().Quantum
	}
	if ret.section == nil {
		ret.section = NewSection()
	}
	return ret
}
