package memory

import (
	"sync"
)

// Config represents physical allocator configuration
type Config struct {
	// Base is the physical address of the first cluster; it must be non-zero
	// so that zero keeps meaning "no allocation".
	Base Addr `json:"base" yaml:"base"`

	// Size is the arena size in bytes, rounded down to whole clusters.
	Size uint64 `json:"size" yaml:"size"`
}

// DefaultConfig returns the default allocator configuration
func DefaultConfig() Config {
	return Config{
		Base: 0x100000,
		Size: 16 * 1024 * 1024,
	}
}

// Physical is a first-fit cluster allocator over a byte arena. It is safe for
// concurrent use.
type Physical struct {
	config Config
	mux    sync.Mutex
	arena  []byte
	// owners[i] holds the base address of the allocation using cluster i.
	owners []Addr
}

var _ Memory = (*Physical)(nil)

// New creates a new physical allocator
func New(config Config) *Physical {
	defaults := DefaultConfig()
	if config.Base == 0 {
		config.Base = defaults.Base
	}
	if config.Size < ClusterSize {
		config.Size = defaults.Size
	}
	count := config.Size / ClusterSize
	config.Size = count * ClusterSize
	return &Physical{
		config: config,
		arena:  make([]byte, config.Size),
		owners: make([]Addr, count),
	}
}

// Alloc allocates a zeroed region of at least size bytes.
func (p *Physical) Alloc(size uint64) Addr {
	if size == 0 || size > uint64(len(p.arena)) {
		return 0
	}
	need := clusters(size)
	p.mux.Lock()
	defer p.mux.Unlock()

	run := uint64(0)
	for i := uint64(0); i < uint64(len(p.owners)); i++ {
		if p.owners[i] != 0 {
			run = 0
			continue
		}
		run++
		if run < need {
			continue
		}
		first := i + 1 - need
		addr := p.config.Base + Addr(first*ClusterSize)
		for j := first; j <= i; j++ {
			p.owners[j] = addr
		}
		clear(p.arena[first*ClusterSize : (i+1)*ClusterSize])
		return addr
	}
	return 0
}

// AllocSize returns the size of the allocation starting at addr.
func (p *Physical) AllocSize(addr Addr) uint64 {
	p.mux.Lock()
	defer p.mux.Unlock()
	first, ok := p.head(addr)
	if !ok {
		return 0
	}
	count := uint64(0)
	for i := first; i < uint64(len(p.owners)) && p.owners[i] == addr; i++ {
		count++
	}
	return count * ClusterSize
}

// Unalloc releases the allocation starting at addr; unknown addresses are ignored.
func (p *Physical) Unalloc(addr Addr) {
	p.mux.Lock()
	defer p.mux.Unlock()
	first, ok := p.head(addr)
	if !ok {
		return
	}
	for i := first; i < uint64(len(p.owners)) && p.owners[i] == addr; i++ {
		p.owners[i] = 0
	}
}

// Read copies len(dest) bytes starting at addr into dest.
func (p *Physical) Read(addr Addr, dest []byte) error {
	p.mux.Lock()
	defer p.mux.Unlock()
	offset, err := p.offset(addr, uint64(len(dest)))
	if err != nil {
		return err
	}
	copy(dest, p.arena[offset:])
	return nil
}

// Write copies src into the arena starting at addr.
func (p *Physical) Write(addr Addr, src []byte) error {
	p.mux.Lock()
	defer p.mux.Unlock()
	offset, err := p.offset(addr, uint64(len(src)))
	if err != nil {
		return err
	}
	copy(p.arena[offset:], src)
	return nil
}

// Copy moves size bytes from src to dest.
func (p *Physical) Copy(dest, src Addr, size uint64) error {
	p.mux.Lock()
	defer p.mux.Unlock()
	from, err := p.offset(src, size)
	if err != nil {
		return err
	}
	to, err := p.offset(dest, size)
	if err != nil {
		return err
	}
	copy(p.arena[to:to+size], p.arena[from:from+size])
	return nil
}

// View returns a slice aliasing the arena.
func (p *Physical) View(addr Addr, size uint64) ([]byte, error) {
	p.mux.Lock()
	defer p.mux.Unlock()
	offset, err := p.offset(addr, size)
	if err != nil {
		return nil, err
	}
	return p.arena[offset : offset+size : offset+size], nil
}

// Free returns the number of unallocated bytes.
func (p *Physical) Free() uint64 {
	p.mux.Lock()
	defer p.mux.Unlock()
	free := uint64(0)
	for _, owner := range p.owners {
		if owner == 0 {
			free += ClusterSize
		}
	}
	return free
}

// head returns the cluster index of addr when addr is the base of a live allocation.
func (p *Physical) head(addr Addr) (uint64, bool) {
	if addr < p.config.Base || (addr-p.config.Base)%ClusterSize != 0 {
		return 0, false
	}
	index := uint64(addr-p.config.Base) / ClusterSize
	if index >= uint64(len(p.owners)) || p.owners[index] != addr {
		return 0, false
	}
	return index, true
}

func (p *Physical) offset(addr Addr, size uint64) (uint64, error) {
	if addr < p.config.Base {
		return 0, rangeError(addr, size)
	}
	offset := uint64(addr - p.config.Base)
	if offset > uint64(len(p.arena)) || size > uint64(len(p.arena))-offset {
		return 0, rangeError(addr, size)
	}
	return offset, nil
}
