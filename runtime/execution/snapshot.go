package execution

import "time"

// Snapshot is the serialisable view of a Context.
type Snapshot struct {
	ID          string    `json:"id"`
	State       string    `json:"state"`
	Entry       uint64    `json:"entry"`
	Stack       []uint64  `json:"stack"`
	Memory      []Region  `json:"memory"`
	FDs         []int     `json:"fds"`
	Cwd         string    `json:"cwd"`
	Path        string    `json:"path"`
	Args        []string  `json:"args,omitempty"`
	ImageDigest string    `json:"imageDigest,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Snapshot returns a copy of the context state that shares nothing with it.
func (c *Context) Snapshot() *Snapshot {
	c.mux.RLock()
	defer c.mux.RUnlock()
	ret := &Snapshot{
		ID:          c.ID,
		State:       c.State,
		Entry:       c.Entry,
		Stack:       append([]uint64(nil), c.Stack...),
		Cwd:         c.Cwd,
		Path:        c.Path,
		Args:        append([]string(nil), c.Args...),
		ImageDigest: c.ImageDigest,
		CreatedAt:   c.CreatedAt,
	}
	for _, region := range c.Memory {
		ret.Memory = append(ret.Memory, *region)
	}
	for _, f := range c.Files {
		ret.FDs = append(ret.FDs, f.FD)
	}
	return ret
}
