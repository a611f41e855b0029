package scheduler

import "sync"

// Section is the global "no interrupts" critical section. It is not
// reentrant: a goroutine holding it must not call StartNoInts again.
type Section struct {
	mux     sync.Mutex
	enabled bool
}

// NewSection returns a section with interrupts enabled.
func NewSection() *Section {
	return &Section{enabled: true}
}

// Default is the process-wide section shared by every scheduler that is not
// given its own.
var Default = NewSection()

// StartNoInts enters the section, disables interrupts and returns whether
// they were enabled before.
func (s *Section) StartNoInts() bool {
	s.mux.Lock()
	prior := s.enabled
	s.enabled = false
	return prior
}

// EndNoInts restores the interrupt state returned by StartNoInts and leaves
// the section.
func (s *Section) EndNoInts(prior bool) {
	s.enabled = prior
	s.mux.Unlock()
}

// Enabled reports whether interrupts are enabled outside the section.
func (s *Section) Enabled() bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.enabled
}

// SetEnabled sets the interrupt flag outside the section and returns the
// previous value.
func (s *Section) SetEnabled(enabled bool) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	prior := s.enabled
	s.enabled = enabled
	return prior
}
