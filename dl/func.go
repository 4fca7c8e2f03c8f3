package dl

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/ebitengine/purego"
)

// Func is a symbol bound to a Go function of type F.
type Func[F any] struct {
	sym *Symbol
	fn  F
}

// Bind resolves name in lib and binds it to a Go function of type F, for
// example func(int32) int32 for a C function int32_t f(int32_t).
//
// F is checked only against the kinds the native call path can marshal.
// Whether the library really exports a function of that shape is the
// caller's responsibility.
func Bind[F any](lib *Library, name string) (*Func[F], error) {
	if err := checkSignature(reflect.TypeFor[F]()); err != nil {
		return nil, &Error{Op: "bind", Name: name, Err: ErrSignature, Cause: err}
	}
	if lib == nil {
		return nil, invalidHandle("bind", name)
	}
	sym, err := lib.Resolve(name)
	if err != nil {
		return nil, err
	}

	var fn F
	if err := register(&fn, sym.addr); err != nil {
		return nil, &Error{Op: "bind", Name: name, Err: ErrSignature, Cause: err}
	}
	return &Func[F]{sym: sym, fn: fn}, nil
}

// Name returns the bound symbol name.
func (f *Func[F]) Name() string { return f.sym.name }

// Do passes the bound function to call while holding the library open.
// It returns ErrInvalidHandle without calling when the library is closed.
func (f *Func[F]) Do(call func(F)) error {
	lib := f.sym.lib
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	if lib.closed {
		return invalidHandle("call", f.sym.name)
	}
	call(f.fn)
	return nil
}

// Get returns the bound function. The caller must keep the library open for
// as long as it uses the function; Do enforces that instead.
func (f *Func[F]) Get() (F, error) {
	lib := f.sym.lib
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	if lib.closed {
		var zero F
		return zero, invalidHandle("call", f.sym.name)
	}
	return f.fn, nil
}

// register converts the panics of purego.RegisterFunc into errors.
func register(fptr any, addr uintptr) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("register: %v", r)
		}
	}()
	purego.RegisterFunc(fptr, addr)
	return nil
}

// checkSignature inspects a function type once and rejects what cannot
// cross the native boundary.
func checkSignature(t reflect.Type) error {
	if t == nil || t.Kind() != reflect.Func {
		return errors.New("only functions can be bound")
	}
	if t.IsVariadic() {
		return errors.New("variadic functions are not supported")
	}
	if t.NumOut() > 1 {
		return errors.New("function may return at most one value")
	}
	for i := range t.NumIn() {
		if !marshallable(t.In(i)) {
			return fmt.Errorf("argument %d has unsupported type %s", i, t.In(i))
		}
	}
	if t.NumOut() == 1 && !marshallable(t.Out(0)) {
		return fmt.Errorf("result has unsupported type %s", t.Out(0))
	}
	return nil
}

func marshallable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.String, reflect.Pointer, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}
