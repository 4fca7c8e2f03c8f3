package dl

import "github.com/ebitengine/purego"

// Symbol is a resolved entry point of an open Library.
type Symbol struct {
	lib  *Library
	name string
	addr uintptr
}

// Name returns the symbol name.
func (s *Symbol) Name() string { return s.name }

// Call invokes the symbol as a C function taking integer or pointer
// arguments and returns the first result register. Narrower results must
// be truncated by the caller, e.g. int32(r) for an int32_t return.
//
// The library stays loaded for the duration of the call.
func (s *Symbol) Call(args ...uintptr) (uintptr, error) {
	s.lib.mu.RLock()
	defer s.lib.mu.RUnlock()
	if s.lib.closed {
		return 0, invalidHandle("call", s.name)
	}
	r1, _, _ := purego.SyscallN(s.addr, args...)
	return r1, nil
}
