package dl

import (
	"errors"
	"fmt"
	"reflect"
	"unicode"
)

var errorType = reflect.TypeFor[error]()

// BindStruct binds every exported func field of the struct dst points to.
// Each field is bound to the symbol named by its `dl:"name"` tag, or to
// {prefix}_{snake_case_field} when the tag is absent. A tag of "-" skips
// the field.
//
// A trailing error result is not part of the native signature: it is nil
// after a successful call and ErrInvalidHandle once lib is closed. Fields
// without it panic with ErrInvalidHandle instead of calling into an
// unloaded library.
//
// Returns the list of bound symbol names and the first error encountered.
func BindStruct(lib *Library, prefix string, dst any) ([]string, error) {
	if lib == nil {
		return nil, invalidHandle("bind", prefix)
	}
	v := reflect.ValueOf(dst)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, &Error{
			Op:    "bind",
			Name:  prefix,
			Err:   ErrSignature,
			Cause: errors.New("destination must be a non-nil pointer to a struct"),
		}
	}
	v = v.Elem()
	t := v.Type()

	var bound []string
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() || field.Type.Kind() != reflect.Func {
			continue
		}

		name := field.Tag.Get("dl")
		if name == "-" {
			continue
		}
		if name == "" {
			name = symbolName(prefix, field.Name)
		}

		fn, err := lib.guarded(name, field.Type)
		if err != nil {
			return bound, fmt.Errorf("binding %s: %w", field.Name, err)
		}
		v.Field(i).Set(fn)
		bound = append(bound, name)
	}
	return bound, nil
}

// guarded binds name to a function of type typ that checks the library
// state before each native call.
func (l *Library) guarded(name string, typ reflect.Type) (reflect.Value, error) {
	if typ.IsVariadic() {
		return reflect.Value{}, &Error{Op: "bind", Name: name, Err: ErrSignature, Cause: errors.New("variadic functions are not supported")}
	}

	ins := make([]reflect.Type, typ.NumIn())
	for i := range ins {
		ins[i] = typ.In(i)
	}
	outs := make([]reflect.Type, typ.NumOut())
	for i := range outs {
		outs[i] = typ.Out(i)
	}
	returnsError := len(outs) > 0 && outs[len(outs)-1] == errorType
	if returnsError {
		outs = outs[:len(outs)-1]
	}

	native := reflect.FuncOf(ins, outs, false)
	if err := checkSignature(native); err != nil {
		return reflect.Value{}, &Error{Op: "bind", Name: name, Err: ErrSignature, Cause: err}
	}

	sym, err := l.Resolve(name)
	if err != nil {
		return reflect.Value{}, err
	}
	ptr := reflect.New(native)
	if err := register(ptr.Interface(), sym.addr); err != nil {
		return reflect.Value{}, &Error{Op: "bind", Name: name, Err: ErrSignature, Cause: err}
	}
	inner := ptr.Elem()

	fn := reflect.MakeFunc(typ, func(args []reflect.Value) []reflect.Value {
		l.mu.RLock()
		defer l.mu.RUnlock()
		if l.closed {
			err := invalidHandle("call", name)
			if !returnsError {
				panic(err)
			}
			res := make([]reflect.Value, 0, len(outs)+1)
			for _, out := range outs {
				res = append(res, reflect.Zero(out))
			}
			return append(res, reflect.ValueOf(&err).Elem())
		}

		res := inner.Call(args)
		if returnsError {
			res = append(res, reflect.Zero(errorType))
		}
		return res
	})
	return fn, nil
}

func symbolName(prefix, field string) string {
	if prefix == "" {
		return camelToSnake(field)
	}
	return prefix + "_" + camelToSnake(field)
}

// camelToSnake maps a Go field name onto the C naming of the exported
// symbol, so AddOne binds add_one and GetUserByID binds get_user_by_id.
func camelToSnake(s string) string {
	runes := []rune(s)
	out := make([]rune, 0, len(runes)+4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && wordStart(runes, i) {
			out = append(out, '_')
		}
		out = append(out, unicode.ToLower(r))
	}
	return string(out)
}

// wordStart reports whether the capital at runes[i] begins a word. Inside
// an acronym only the capital followed by a lowercase letter does.
func wordStart(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
