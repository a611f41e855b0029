// Package memory models the physical memory of the machine as a single arena
// carved into fixed-size clusters.  Allocations are contiguous runs of
// clusters; an address of zero is never handed out and denotes failure.
//
// Only three allocator operations are consumed by the process loader
// (Alloc, AllocSize and Unalloc); the remaining methods move bytes in and out
// of the arena in place of raw pointer access.
package memory
