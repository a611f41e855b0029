package memory

import (
	"errors"
	"io"
)

// Buffer is a growable byte buffer whose storage is a single allocation in
// Memory. Growing reallocates, so Addr changes as data is written.
type Buffer struct {
	memory Memory
	addr   Addr
	size   uint64
}

// NewBuffer creates an empty buffer; nothing is allocated until the first write.
func NewBuffer(memory Memory) *Buffer {
	return &Buffer{memory: memory}
}

// Addr returns the base of the backing allocation or zero when empty.
func (b *Buffer) Addr() Addr {
	return b.addr
}

// Len returns the number of bytes written.
func (b *Buffer) Len() uint64 {
	return b.size
}

// Cap returns the usable size of the backing allocation.
func (b *Buffer) Cap() uint64 {
	if b.addr == 0 {
		return 0
	}
	return b.memory.AllocSize(b.addr)
}

// Write appends p to the buffer.
func (b *Buffer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := b.grow(uint64(len(p))); err != nil {
		return 0, err
	}
	if err := b.memory.Write(b.addr+Addr(b.size), p); err != nil {
		return 0, err
	}
	b.size += uint64(len(p))
	return len(p), nil
}

// ReadFrom reads r until EOF, appending everything to the buffer.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	chunk := make([]byte, ClusterSize)
	total := int64(0)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			if _, wErr := b.Write(chunk[:n]); wErr != nil {
				return total, wErr
			}
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Bytes returns a view of the written bytes.
func (b *Buffer) Bytes() ([]byte, error) {
	if b.size == 0 {
		return nil, nil
	}
	return b.memory.View(b.addr, b.size)
}

// Release frees the backing allocation and empties the buffer.
func (b *Buffer) Release() {
	if b.addr != 0 {
		b.memory.Unalloc(b.addr)
	}
	b.addr = 0
	b.size = 0
}

func (b *Buffer) grow(n uint64) error {
	need := b.size + n
	capacity := b.Cap()
	if need <= capacity {
		return nil
	}
	target := capacity * 2
	if target < need {
		target = need
	}
	addr := b.memory.Alloc(target)
	if addr == 0 {
		return ErrOutOfMemory
	}
	if b.size > 0 {
		if err := b.memory.Copy(addr, b.addr, b.size); err != nil {
			b.memory.Unalloc(addr)
			return err
		}
	}
	if b.addr != 0 {
		b.memory.Unalloc(b.addr)
	}
	b.addr = addr
	return nil
}
