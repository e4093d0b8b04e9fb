package dynload

import (
	"errors"
)

var (
	// ErrLoad occurs when the native loader can't open a library.
	ErrLoad = errors.New("loading library error")
	// ErrUnload occurs when the native loader can't release a library.
	ErrUnload = errors.New("unloading library error")
	// ErrSymbol occurs when a symbol can't be found in a loaded library.
	ErrSymbol = errors.New("loading symbol error")
	// ErrNotLoaded occurs when resolving a symbol from a Module holding no library.
	ErrNotLoaded = errors.New("library was not loaded")
	// ErrLoaded occurs when loading into a Module that already holds a library.
	ErrLoaded = errors.New("library already loaded")
	// ErrUnsupported is returned by the native loader on platforms without dynamic loading.
	ErrUnsupported = errors.New("dynamic loading unsupported on this platform")
)

// Error is the error returned by Module operations.
//
// Kind is one of the sentinel errors of this package and is what [errors.Is] matches,
// Err is the platform's own description of the failure, if it gave one.
// Descriptions are lowercase as Go error strings are ("loading library error",
// not "Loading library error"), match on Kind rather than on text.
type Error struct {
	Kind   error
	Path   string
	Symbol string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Is(target error) bool { return e.Kind == target }

func (e *Error) Unwrap() error { return e.Err }
