package memory

import (
	"bytes"
	"fmt"
)

// CString places value followed by a NUL byte in a fresh allocation and
// returns its address.
func CString(memory Memory, value string) (Addr, error) {
	addr := memory.Alloc(uint64(len(value)) + 1)
	if addr == 0 {
		return 0, fmt.Errorf("failed to allocate string %q: %w", value, ErrOutOfMemory)
	}
	if err := memory.Write(addr, append([]byte(value), 0)); err != nil {
		memory.Unalloc(addr)
		return 0, err
	}
	return addr, nil
}

// GoString reads the NUL-terminated string stored in the allocation at addr.
func GoString(memory Memory, addr Addr) (string, error) {
	size := memory.AllocSize(addr)
	if size == 0 {
		return "", rangeError(addr, 0)
	}
	data, err := memory.View(addr, size)
	if err != nil {
		return "", err
	}
	end := bytes.IndexByte(data, 0)
	if end < 0 {
		return "", fmt.Errorf("unterminated string at %#x", uint64(addr))
	}
	return string(data[:end]), nil
}
