package execution

import (
	"github.com/viant/procexec/service/memory"
)

// Stack is the initial argument layout of a context.
//
// Values, from low index to high: envp (0), argv terminator (0), the address
// of every argument in reverse order, the address of the program path, argc.
// Popping from the high end therefore yields argc, path, args in order, NULL,
// NULL.
type Stack struct {
	Values  []uint64
	Strings []memory.Addr
}

// NewStack places path and args as NUL-terminated strings in mem and builds
// the argument layout. On error every string placed so far is released.
func NewStack(mem memory.Memory, path string, args []string) (*Stack, error) {
	ret := &Stack{Values: make([]uint64, 0, len(args)+4)}
	ret.Values = append(ret.Values, 0, 0)
	argc := uint64(1)
	for i := len(args) - 1; i >= 0; i-- {
		addr, err := ret.push(mem, args[i])
		if err != nil {
			ret.Release(mem)
			return nil, err
		}
		ret.Values = append(ret.Values, uint64(addr))
		argc++
	}
	addr, err := ret.push(mem, path)
	if err != nil {
		ret.Release(mem)
		return nil, err
	}
	ret.Values = append(ret.Values, uint64(addr), argc)
	return ret, nil
}

// Argc returns the argument count stored at the top of the stack.
func (s *Stack) Argc() uint64 {
	if len(s.Values) == 0 {
		return 0
	}
	return s.Values[len(s.Values)-1]
}

// Release frees the strings backing the stack.
func (s *Stack) Release(allocator memory.Allocator) {
	for _, addr := range s.Strings {
		allocator.Unalloc(addr)
	}
	s.Strings = nil
}

func (s *Stack) push(mem memory.Memory, value string) (memory.Addr, error) {
	addr, err := memory.CString(mem, value)
	if err != nil {
		return 0, err
	}
	s.Strings = append(s.Strings, addr)
	return addr, nil
}
