//go:build darwin || freebsd || linux

package dynload

import (
	"github.com/ebitengine/purego"
)

type native struct{}

// nativeFlags translates Flag to dlopen mode bits.
func nativeFlags(f Flag) int {
	mode := purego.RTLD_NOW
	if f&Lazy != 0 {
		mode = purego.RTLD_LAZY
	}
	if f&Local != 0 {
		mode |= purego.RTLD_LOCAL
	} else {
		mode |= purego.RTLD_GLOBAL
	}
	return mode
}

func (native) Open(path string, flags Flag) (uintptr, error) {
	return purego.Dlopen(path, nativeFlags(flags))
}

func (native) Symbol(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

func (native) Close(handle uintptr) error {
	return purego.Dlclose(handle)
}
