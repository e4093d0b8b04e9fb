/*
Package dynload loads shared libraries at runtime and resolves their exported symbols as Go functions.

# License

Source codes are under Apache License Version 2.0.

# Underwater

 1. On darwin, freebsd and linux libraries are opened by dlopen through [purego], no cgo required.
 2. On windows libraries are opened by LoadLibraryEx through [golang.org/x/sys/windows].
 3. A resolved function symbol is turned into a Go function by [purego.RegisterFunc], see [As].
 4. Errors are [*Error] values, their text is a fixed description followed by the platform's own message.

# Flags

[Local] and [Lazy] translate to native flags as:

	        | POSIX                       | Windows
	Local   | RTLD_LOCAL, else RTLD_GLOBAL | ignored
	Lazy    | RTLD_LAZY, else RTLD_NOW     | DONT_RESOLVE_DLL_REFERENCES, else 0

# Notes

 1. A [Module] is single owner, it has no internal locking.
 2. Search paths, dependencies between libraries and caching are left to the OS loader.
 3. Nothing validates a resolved symbol against the Go type it is reinterpreted as.

# Samples

	m, err := dynload.Open("libc.so.6", dynload.Lazy)
	if err != nil {
		return err
	}
	defer m.Release()
	abs, err := dynload.Resolve[func(int32) int32](m, "abs")
	if err != nil {
		return err
	}
	println(abs(-7))

[purego]: https://github.com/ebitengine/purego
*/
package dynload
