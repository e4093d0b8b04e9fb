package pool

import (
	"errors"
	"slices"
	"sync"

	"github.com/ZenLiuCN/fn"

	"github.com/ZenLiuCN/dynload"
)

// Pool is a named set of modules, unloaded in the reverse order they were loaded.
//
// It is not a cache, the same path may be loaded under different names.
type Pool struct {
	Modules map[string]*dynload.Module
	Loaded  []string
	opts    []dynload.Option
	flags   map[string]dynload.Flag
	sync.RWMutex
}

var (
	ErrAlreadyLoad = errors.New("module already loaded")
	ErrNotLoad     = errors.New("module not loaded")
)

// New create new pool, opts are applied to every module.
func New(opts ...dynload.Option) *Pool {
	return &Pool{
		Modules: make(map[string]*dynload.Module),
		flags:   make(map[string]dynload.Flag),
		opts:    opts,
	}
}

// Load the library at path as name.
func (p *Pool) Load(name, path string, flags dynload.Flag) (err error) {
	p.Lock()
	defer p.Unlock()
	if _, ok := p.Modules[name]; ok {
		return ErrAlreadyLoad
	}
	return p.load(name, path, flags)
}

func (p *Pool) load(name, path string, flags dynload.Flag) (err error) {
	m, err := dynload.Open(path, flags, p.opts...)
	if err != nil {
		return
	}
	p.Modules[name] = m
	p.flags[name] = flags
	p.Loaded = append(p.Loaded, name)
	return
}

// Unload the module of name.
func (p *Pool) Unload(name string) error {
	p.Lock()
	defer p.Unlock()
	return p.unload(name)
}

func (p *Pool) unload(name string) error {
	m, ok := p.Modules[name]
	if !ok {
		return ErrNotLoad
	}
	delete(p.Modules, name)
	delete(p.flags, name)
	if i := slices.Index(p.Loaded, name); i >= 0 {
		p.Loaded = slices.Delete(p.Loaded, i, i+1)
	}
	return m.Unload()
}

// Reload unloads name and loads the same path with the same flags again.
// Symbols required before are invalid afterwards.
func (p *Pool) Reload(name string) (err error) {
	p.Lock()
	defer p.Unlock()
	m, ok := p.Modules[name]
	if !ok {
		return ErrNotLoad
	}
	path, flags := m.Path(), p.flags[name]
	if err = p.unload(name); err != nil {
		return
	}
	return p.load(name, path, flags)
}

// Module fetch the module of name.
func (p *Pool) Module(name string) (m *dynload.Module, ok bool) {
	p.RLock()
	defer p.RUnlock()
	m, ok = p.Modules[name]
	return
}

// Require fetch symbol from the module of name.
func (p *Pool) Require(name, symbol string) (dynload.Sym, error) {
	p.RLock()
	defer p.RUnlock()
	if m, ok := p.Modules[name]; ok {
		return m.Lookup(symbol)
	}
	return 0, ErrNotLoad
}

// Names of loaded modules, sorted.
func (p *Pool) Names() []string {
	p.RLock()
	defer p.RUnlock()
	n := fn.MapKeys(p.Modules)
	slices.Sort(n)
	return n
}

// Close unloads every module, last loaded first.
func (p *Pool) Close() error {
	p.Lock()
	defer p.Unlock()
	var errs []error
	for i := len(p.Loaded) - 1; i >= 0; i-- {
		if err := p.Modules[p.Loaded[i]].Unload(); err != nil {
			errs = append(errs, err)
		}
	}
	clear(p.Modules)
	clear(p.flags)
	p.Loaded = p.Loaded[:0]
	return errors.Join(errs...)
}
