package scheduler

import "github.com/viant/procexec/runtime/execution"

// RunSet is the ordered list of live contexts. It does no locking of its
// own; every access goes through a Section.
type RunSet struct {
	contexts []*execution.Context
}

// NewRunSet creates an empty run set
func NewRunSet() *RunSet {
	return &RunSet{}
}

// Push appends aContext.
func (r *RunSet) Push(aContext *execution.Context) {
	r.contexts = append(r.contexts, aContext)
}

// Len returns the number of contexts.
func (r *RunSet) Len() int {
	return len(r.contexts)
}

// At returns the context at index i.
func (r *RunSet) At(i int) *execution.Context {
	return r.contexts[i]
}

func (r *RunSet) snapshot() []*execution.Context {
	return append([]*execution.Context(nil), r.contexts...)
}
