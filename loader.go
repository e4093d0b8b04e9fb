package dynload

// Loader is the native dynamic loader of a platform.
//
// Handles are opaque, a zero handle is never valid. Errors should carry the
// platform's last error text, Module prefixes them with its own description.
type Loader interface {
	Open(path string, flags Flag) (handle uintptr, err error) //open a library, translating flags to native ones
	Symbol(handle uintptr, name string) (addr uintptr, err error)
	Close(handle uintptr) error
}

// NativeLoader returns the loader of the running platform.
func NativeLoader() Loader {
	return native{}
}
