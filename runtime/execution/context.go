package execution

import (
	"sync"
	"time"

	"github.com/viant/procexec/internal/clock"
	"github.com/viant/procexec/internal/idgen"
	"github.com/viant/procexec/service/memory"
	"github.com/viant/procexec/service/resource"
)

// Context state constants
const (
	StateReady   = "ready"
	StateRunning = "running"
)

// Region is a physical region mapped into a context.
type Region struct {
	PhysicalAddress memory.Addr `json:"physicalAddress"`
	VirtualAddress  uint64      `json:"virtualAddress"`
	VirtualSize     uint64      `json:"virtualSize"`
}

// Contains reports whether addr lies in [VirtualAddress, VirtualAddress+VirtualSize).
func (r *Region) Contains(addr uint64) bool {
	return addr >= r.VirtualAddress && addr-r.VirtualAddress < r.VirtualSize
}

// File is an open resource bound to a descriptor number.
type File struct {
	FD       int
	Resource resource.Resource
}

// Context is a schedulable unit: entry point, initial stack, owned memory,
// open files and working directory.
type Context struct {
	ID          string
	State       string
	Entry       uint64
	Stack       []uint64
	Memory      []*Region
	Files       []*File
	Cwd         string
	Path        string
	Args        []string
	ImageDigest string
	CreatedAt   time.Time
	// strings backs the addresses in Stack.
	strings []memory.Addr
	mux     sync.RWMutex
}

// NewContext creates a context starting at entry with the supplied stack.
// The context takes ownership of the stack's strings.
func NewContext(entry uint64, stack *Stack) *Context {
	ret := &Context{
		ID:        idgen.New(),
		State:     StateReady,
		Entry:     entry,
		CreatedAt: clock.Now(),
	}
	if stack != nil {
		ret.Stack = stack.Values
		ret.strings = stack.Strings
	}
	return ret
}

// AddRegion attaches region; the context owns its physical allocation.
func (c *Context) AddRegion(region *Region) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.Memory = append(c.Memory, region)
}

// AddFile binds res to fd.
func (c *Context) AddFile(fd int, res resource.Resource) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.Files = append(c.Files, &File{FD: fd, Resource: res})
}

// GetState returns the context state
func (c *Context) GetState() string {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return c.State
}

// SetState sets the context state
func (c *Context) SetState(state string) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.State = state
}

// Release frees everything the context owns: its regions, argument strings
// and open files. It is used when a context is torn down.
func (c *Context) Release(allocator memory.Allocator) {
	c.mux.Lock()
	defer c.mux.Unlock()
	for _, region := range c.Memory {
		allocator.Unalloc(region.PhysicalAddress)
	}
	for _, addr := range c.strings {
		allocator.Unalloc(addr)
	}
	for _, f := range c.Files {
		_ = f.Resource.Close()
	}
	c.Memory = nil
	c.Files = nil
	c.strings = nil
}
