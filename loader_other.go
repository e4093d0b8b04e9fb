//go:build !darwin && !freebsd && !linux && !windows

package dynload

type native struct{}

func (native) Open(string, Flag) (uintptr, error) { return 0, ErrUnsupported }

func (native) Symbol(uintptr, string) (uintptr, error) { return 0, ErrUnsupported }

func (native) Close(uintptr) error { return ErrUnsupported }
