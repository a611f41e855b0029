package execution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/procexec/internal/clock"
	"github.com/viant/procexec/internal/idgen"
	"github.com/viant/procexec/service/memory"
)

func readString(t *testing.T, mem memory.Memory, addr uint64) string {
	value, err := memory.GoString(mem, memory.Addr(addr))
	assert.NoError(t, err)
	return value
}

func TestNewStack(t *testing.T) {
	testCases := []struct {
		description string
		path        string
		args        []string
		expectArgc  uint64
	}{
		{description: "no arguments", path: "app://bin", args: nil, expectArgc: 1},
		{description: "three arguments", path: "app://bin", args: []string{"a", "b", "c"}, expectArgc: 4},
		{description: "empty argument", path: "file:///bin/sh", args: []string{""}, expectArgc: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			mem := memory.New(memory.Config{Base: 0x10000, Size: 64 * memory.ClusterSize})
			stack, err := NewStack(mem, tc.path, tc.args)
			assert.NoError(t, err)
			values := stack.Values
			assert.Len(t, values, len(tc.args)+4)
			assert.Len(t, stack.Strings, len(tc.args)+1)
			assert.Equal(t, tc.expectArgc, stack.Argc())

			// low end: envp then argv terminator
			assert.EqualValues(t, 0, values[0])
			assert.EqualValues(t, 0, values[1])

			// high end read downwards: argc, path, args in input order
			top := len(values) - 1
			assert.Equal(t, tc.expectArgc, values[top])
			assert.Equal(t, tc.path, readString(t, mem, values[top-1]))
			for i, arg := range tc.args {
				assert.Equal(t, arg, readString(t, mem, values[top-2-i]))
			}

			stack.Release(mem)
			assert.EqualValues(t, 64*memory.ClusterSize, mem.Free())
		})
	}
}

func TestNewStack_OutOfMemory(t *testing.T) {
	mem := memory.New(memory.Config{Base: 0x10000, Size: 2 * memory.ClusterSize})
	stack, err := NewStack(mem, "app://bin", []string{"a", "b", "c"})
	assert.ErrorIs(t, err, memory.ErrOutOfMemory)
	assert.Nil(t, stack)
	assert.EqualValues(t, 2*memory.ClusterSize, mem.Free())
}

func TestContext_Release(t *testing.T) {
	newID := idgen.NewFunc
	idgen.NewFunc = func() string { return "ctx-1" }
	defer func() { idgen.NewFunc = newID }()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	clock.NowFunc = func() time.Time { return now }
	defer func() { clock.NowFunc = time.Now }()

	mem := memory.New(memory.Config{Base: 0x10000, Size: 8 * memory.ClusterSize})
	stack, err := NewStack(mem, "app://bin", []string{"x"})
	assert.NoError(t, err)
	physical := mem.Alloc(memory.ClusterSize)

	aContext := NewContext(0x80000010, stack)
	aContext.AddRegion(&Region{PhysicalAddress: physical, VirtualAddress: 0x80000000, VirtualSize: memory.ClusterSize})
	assert.Equal(t, "ctx-1", aContext.ID)
	assert.Equal(t, now, aContext.CreatedAt)
	assert.Equal(t, StateReady, aContext.GetState())
	assert.True(t, aContext.Memory[0].Contains(aContext.Entry))
	assert.False(t, aContext.Memory[0].Contains(0x80000000+memory.ClusterSize))

	snapshot := aContext.Snapshot()
	assert.Equal(t, aContext.Stack, snapshot.Stack)
	assert.Len(t, snapshot.Memory, 1)

	aContext.Release(mem)
	assert.EqualValues(t, 8*memory.ClusterSize, mem.Free())
	assert.Empty(t, aContext.Memory)
}
