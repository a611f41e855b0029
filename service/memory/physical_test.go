package memory

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestMemory() *Physical {
	return New(Config{Base: 0x10000, Size: 16 * ClusterSize})
}

func TestPhysical_Alloc(t *testing.T) {
	testCases := []struct {
		description  string
		size         uint64
		expectedSize uint64
	}{
		{description: "zero size", size: 0, expectedSize: 0},
		{description: "one byte", size: 1, expectedSize: ClusterSize},
		{description: "exact cluster", size: ClusterSize, expectedSize: ClusterSize},
		{description: "cluster plus one", size: ClusterSize + 1, expectedSize: 2 * ClusterSize},
		{description: "larger than arena", size: 17 * ClusterSize, expectedSize: 0},
		{description: "size wraps cluster rounding", size: ^uint64(0), expectedSize: 0},
		{description: "size one cluster short of wrap", size: ^uint64(0) - ClusterSize + 2, expectedSize: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			mem := newTestMemory()
			addr := mem.Alloc(tc.size)
			if tc.expectedSize == 0 {
				assert.EqualValues(t, 0, addr)
				assert.EqualValues(t, 16*ClusterSize, mem.Free())
				return
			}
			assert.NotEqualValues(t, 0, addr)
			assert.EqualValues(t, tc.expectedSize, mem.AllocSize(addr))
		})
	}
}

func TestPhysical_Unalloc(t *testing.T) {
	mem := newTestMemory()
	first := mem.Alloc(2 * ClusterSize)
	second := mem.Alloc(ClusterSize)
	assert.NotEqual(t, first, second)
	assert.EqualValues(t, 13*ClusterSize, mem.Free())

	mem.Unalloc(first)
	assert.EqualValues(t, 0, mem.AllocSize(first))
	assert.EqualValues(t, ClusterSize, mem.AllocSize(second))
	assert.EqualValues(t, 15*ClusterSize, mem.Free())

	// interior and foreign addresses are ignored
	mem.Unalloc(second + 1)
	mem.Unalloc(0)
	assert.EqualValues(t, ClusterSize, mem.AllocSize(second))

	third := mem.Alloc(2 * ClusterSize)
	assert.Equal(t, first, third)
}

func TestPhysical_AllocZeroes(t *testing.T) {
	mem := newTestMemory()
	addr := mem.Alloc(ClusterSize)
	assert.NoError(t, mem.Write(addr, bytes.Repeat([]byte{0xff}, ClusterSize)))
	mem.Unalloc(addr)

	again := mem.Alloc(ClusterSize)
	assert.Equal(t, addr, again)
	data, err := mem.View(again, ClusterSize)
	assert.NoError(t, err)
	assert.Equal(t, make([]byte, ClusterSize), data)
}

func TestPhysical_Bounds(t *testing.T) {
	mem := newTestMemory()
	assert.ErrorIs(t, mem.Write(0x10, []byte("x")), ErrInvalidAddress)
	assert.ErrorIs(t, mem.Read(0x10000+16*ClusterSize-1, make([]byte, 2)), ErrInvalidAddress)
	_, err := mem.View(0x10000, 17*ClusterSize)
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.ErrorIs(t, mem.Copy(0x10000, 0x10000+15*ClusterSize, 2*ClusterSize), ErrInvalidAddress)
}

func TestPhysical_Copy(t *testing.T) {
	mem := newTestMemory()
	src := mem.Alloc(ClusterSize)
	dest := mem.Alloc(ClusterSize)
	assert.NoError(t, mem.Write(src, []byte("payload")))
	assert.NoError(t, mem.Copy(dest, src, 7))
	actual := make([]byte, 7)
	assert.NoError(t, mem.Read(dest, actual))
	assert.Equal(t, "payload", string(actual))
}

func TestPhysical_Concurrency(t *testing.T) {
	mem := New(Config{Base: 0x10000, Size: 256 * ClusterSize})
	var wg sync.WaitGroup
	var mux sync.Mutex
	seen := map[Addr]bool{}
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			addr := mem.Alloc(ClusterSize)
			mux.Lock()
			defer mux.Unlock()
			assert.False(t, seen[addr])
			seen[addr] = true
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 64)
}

func TestBuffer_ReadFrom(t *testing.T) {
	mem := newTestMemory()
	buffer := NewBuffer(mem)
	payload := bytes.Repeat([]byte("0123456789abcdef"), 512)

	n, err := buffer.ReadFrom(bytes.NewReader(payload))
	assert.NoError(t, err)
	assert.EqualValues(t, len(payload), n)
	assert.EqualValues(t, len(payload), buffer.Len())
	assert.EqualValues(t, 2*ClusterSize, buffer.Cap())

	data, err := buffer.Bytes()
	assert.NoError(t, err)
	assert.Equal(t, payload, data)

	buffer.Release()
	assert.EqualValues(t, 0, buffer.Addr())
	assert.EqualValues(t, 16*ClusterSize, mem.Free())
}

func TestBuffer_OutOfMemory(t *testing.T) {
	mem := New(Config{Base: 0x10000, Size: 2 * ClusterSize})
	buffer := NewBuffer(mem)
	_, err := buffer.ReadFrom(strings.NewReader(strings.Repeat("x", 3*ClusterSize)))
	assert.ErrorIs(t, err, ErrOutOfMemory)
	buffer.Release()
	assert.EqualValues(t, 2*ClusterSize, mem.Free())
}

func TestCString(t *testing.T) {
	mem := newTestMemory()
	addr, err := CString(mem, "app://bin")
	assert.NoError(t, err)
	value, err := GoString(mem, addr)
	assert.NoError(t, err)
	assert.Equal(t, "app://bin", value)

	_, err = GoString(mem, addr+1)
	assert.Error(t, err)
}
