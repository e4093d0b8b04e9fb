//go:build windows

package dynload

import (
	"golang.org/x/sys/windows"
)

type native struct{}

// nativeFlags translates Flag to LoadLibraryEx flags.
// DLL exports have no global namespace, so Local carries no meaning here.
func nativeFlags(f Flag) uintptr {
	if f&Lazy != 0 {
		return windows.DONT_RESOLVE_DLL_REFERENCES
	}
	return 0
}

func (native) Open(path string, flags Flag) (uintptr, error) {
	h, err := windows.LoadLibraryEx(path, 0, nativeFlags(flags))
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

func (native) Symbol(handle uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), name)
}

func (native) Close(handle uintptr) error {
	return windows.FreeLibrary(windows.Handle(handle))
}
