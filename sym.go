package dynload

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Sym is the raw address of a resolved symbol.
type Sym uintptr

// As reinterprets a resolved address as T.
//
// This is the only place a symbol address changes representation:
//
//   - for a function type, T becomes a Go function calling the native code at s,
//     the caller is responsible for T matching the native signature.
//   - for a pointer, unsafe.Pointer or uintptr type, T is the address itself,
//     it points into the library and is valid only while the library stays loaded.
//
// Any other kind of T panics.
func As[T any](s Sym) (x T) {
	switch t := reflect.TypeOf((*T)(nil)).Elem(); t.Kind() {
	case reflect.Func:
		bindFunc(&x, uintptr(s))
	case reflect.Pointer, reflect.UnsafePointer, reflect.Uintptr:
		*(*uintptr)(unsafe.Pointer(&x)) = uintptr(s)
	default:
		panic(fmt.Errorf("dynload: can't reinterpret symbol as %s", t))
	}
	return
}

// Resolve looks up name in m and reinterprets it as T, see [As].
func Resolve[T any](m *Module, name string) (x T, err error) {
	var s Sym
	if s, err = m.Lookup(name); err != nil {
		return
	}
	return As[T](s), nil
}

// MustResolve is like Resolve but panics with the *Error on failure.
func MustResolve[T any](m *Module, name string) T {
	x, err := Resolve[T](m, name)
	if err != nil {
		panic(err)
	}
	return x
}
