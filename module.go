package dynload

import (
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Flag controls how a library is loaded. Flags combine with bitwise or.
type Flag int

const (
	// Local keeps the symbols of the library out of the namespace used to
	// resolve libraries loaded afterwards. Without it they are made global.
	// Windows has no such namespace and ignores it.
	Local Flag = 1 << iota
	// Lazy defers binding of the references of the library until first use,
	// without it everything is bound at load time.
	Lazy
)

func (f Flag) String() string {
	if f == 0 {
		return "0"
	}
	var s []string
	if f&Local != 0 {
		s = append(s, "Local")
	}
	if f&Lazy != 0 {
		s = append(s, "Lazy")
	}
	if r := f &^ (Local | Lazy); r != 0 {
		s = append(s, strconv.Itoa(int(r)))
	}
	return strings.Join(s, "|")
}

type (
	// Module owns at most one native library handle.
	//
	// Use Steps:
	//
	//	1. [Open] or [New] then [Module.Load] the library.
	//	2. [Resolve] symbols as Go functions or pointers.
	//	3. defer [Module.Release] or call [Module.Unload] to free the library.
	//
	// Note:
	//
	//	1. A Module is not safe for concurrent use, callers must serialize access to one instance.
	//	2. Resolved symbols are invalid once the library is unloaded.
	//	3. A loaded Module which becomes unreachable is released on a best-effort basis by the garbage collector.
	//	4. A Module must not be copied after loading, copies would share one native handle.
	Module struct {
		path   string
		loader Loader
		log    *slog.Logger
		lib    *library
	}
	// library holds the native handle, it carries the finalizer so a Module
	// may be embedded or copied before loading.
	library struct {
		path   string
		flags  Flag
		handle uintptr
		tmp    string // extracted by OpenFS, removed on release
	}
	// Option configures a Module.
	Option func(*Module)
)

// WithLoader replaces the native loader, mostly for testing.
func WithLoader(l Loader) Option {
	return func(m *Module) {
		m.loader = l
	}
}

// WithLogger sets the logger of the Module, default is [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		m.log = l
	}
}

// New creates a Module holding no library.
func New(opts ...Option) *Module {
	m := &Module{loader: NativeLoader(), log: slog.Default()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Open creates a Module and loads path into it.
func Open(path string, flags Flag, opts ...Option) (*Module, error) {
	m := New(opts...)
	if err := m.Load(path, flags); err != nil {
		return nil, err
	}
	return m, nil
}

// Load opens the library at path. Resolution of path is left to the OS loader.
//
// Loading into a Module that already holds a library fails with ErrLoaded and
// keeps the held library.
func (m *Module) Load(path string, flags Flag) error {
	if m.lib != nil {
		return &Error{Kind: ErrLoaded, Path: m.lib.path}
	}
	h, err := m.loader.Open(path, flags)
	if err != nil || h == 0 {
		m.log.Debug("load library", "path", path, "flags", flags, "err", err)
		return &Error{Kind: ErrLoad, Path: path, Err: err}
	}
	lib := &library{path: path, flags: flags, handle: h}
	loader, log := m.loader, m.log
	runtime.SetFinalizer(lib, func(l *library) { l.release(loader, log) })
	m.lib, m.path = lib, path
	m.log.Debug("load library", "path", path, "flags", flags, "handle", h)
	return nil
}

// Unload releases the held library, it does nothing when none is held.
//
// The Module holds no library afterwards even when the platform reports a
// failure, the handle is never handed to the OS twice.
func (m *Module) Unload() error {
	lib := m.lib
	if lib == nil {
		return nil
	}
	m.lib = nil
	runtime.SetFinalizer(lib, nil)
	defer lib.cleanup(m.log)
	if err := m.loader.Close(lib.handle); err != nil {
		m.log.Debug("unload library", "path", lib.path, "err", err)
		return &Error{Kind: ErrUnload, Path: lib.path, Err: err}
	}
	m.log.Debug("unload library", "path", lib.path)
	return nil
}

// Close implements io.Closer, it is Unload.
func (m *Module) Close() error {
	return m.Unload()
}

// Release unloads the library and logs instead of returning any failure.
// It is meant to be deferred by the owner of the Module.
func (m *Module) Release() {
	if err := m.Unload(); err != nil {
		m.log.Warn("release library", "path", m.path, "err", err)
	}
}

// IsLoaded reports whether a library is held.
func (m *Module) IsLoaded() bool {
	return m.lib != nil
}

// Path returns the path of the last successfully loaded library. It is kept after unloading.
func (m *Module) Path() string {
	return m.path
}

// Handle returns the native handle, or zero when no library is held.
func (m *Module) Handle() uintptr {
	if m.lib == nil {
		return 0
	}
	return m.lib.handle
}

// Lookup resolves the raw address of the exported symbol name.
func (m *Module) Lookup(name string) (Sym, error) {
	lib := m.lib
	if lib == nil {
		return 0, &Error{Kind: ErrNotLoaded, Symbol: name}
	}
	p, err := m.loader.Symbol(lib.handle, name)
	runtime.KeepAlive(lib)
	if err != nil || p == 0 {
		return 0, &Error{Kind: ErrSymbol, Path: lib.path, Symbol: name, Err: err}
	}
	m.log.Debug("lookup symbol", "path", lib.path, "symbol", name, "addr", p)
	return Sym(p), nil
}

func (l *library) release(loader Loader, log *slog.Logger) {
	if err := loader.Close(l.handle); err != nil {
		log.Warn("release unreachable library", "path", l.path, "flags", l.flags, "err", err)
	}
	l.cleanup(log)
}

func (l *library) cleanup(log *slog.Logger) {
	if l.tmp == "" {
		return
	}
	if err := os.RemoveAll(l.tmp); err != nil {
		log.Warn("remove extracted library", "dir", l.tmp, "err", err)
	}
}
