//go:build !darwin && !freebsd && !linux && !windows

package dynload

func bindFunc(any, uintptr) {
	panic(ErrUnsupported)
}
