package memory

import (
	"errors"
	"fmt"
)

// ClusterSize is the allocation granularity of the physical allocator.
const ClusterSize = 4096

// Addr is a physical address. Zero is the invalid address.
type Addr uint64

var (
	// ErrOutOfMemory is returned when no contiguous run of free clusters can
	// satisfy a request.
	ErrOutOfMemory = errors.New("memory: out of memory")

	// ErrInvalidAddress is returned when an access falls outside the arena.
	ErrInvalidAddress = errors.New("memory: invalid address")
)

// Allocator allocates and frees contiguous physical regions.
type Allocator interface {
	// Alloc returns the base of a new zeroed region of at least size bytes or
	// zero when the request cannot be satisfied.
	Alloc(size uint64) Addr

	// AllocSize returns the usable size of the allocation starting at addr, or
	// zero when addr is not the base of a live allocation.
	AllocSize(addr Addr) uint64

	// Unalloc releases the allocation starting at addr.
	Unalloc(addr Addr)
}

// Memory is an Allocator whose arena can also be read and written.
type Memory interface {
	Allocator

	Read(addr Addr, dest []byte) error

	Write(addr Addr, src []byte) error

	// Copy moves size bytes from src to dest; the ranges may overlap.
	Copy(dest, src Addr, size uint64) error

	// View returns the arena bytes in [addr, addr+size) without copying.
	View(addr Addr, size uint64) ([]byte, error)
}

func clusters(size uint64) uint64 {
	ret := size / ClusterSize
	if size%ClusterSize != 0 {
		ret++
	}
	return ret
}

func rangeError(addr Addr, size uint64) error {
	return fmt.Errorf("%w: [%#x, %#x)", ErrInvalidAddress, uint64(addr), uint64(addr)+size)
}
