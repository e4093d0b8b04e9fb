package pool

import (
	"errors"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"

	"github.com/ZenLiuCN/dynload"
)

type loader struct {
	sync.Mutex
	next   uintptr
	open   map[uintptr]string
	closed []string
}

func (l *loader) Open(path string, _ dynload.Flag) (uintptr, error) {
	l.Lock()
	defer l.Unlock()
	if path == "missing.so" {
		return 0, errors.New("no such file")
	}
	if l.open == nil {
		l.open = make(map[uintptr]string)
	}
	l.next++
	l.open[l.next] = path
	return l.next, nil
}

func (l *loader) Symbol(handle uintptr, name string) (uintptr, error) {
	l.Lock()
	defer l.Unlock()
	if name == "Run" {
		return handle << 8, nil
	}
	return 0, errors.New("undefined symbol: " + name)
}

func (l *loader) Close(handle uintptr) error {
	l.Lock()
	defer l.Unlock()
	l.closed = append(l.closed, l.open[handle])
	delete(l.open, handle)
	return nil
}

func TestPool(t *testing.T) {
	l := new(loader)
	p := New(dynload.WithLoader(l))
	for _, lib := range []struct{ name, path string }{
		{"sample", "libsample.so"},
		{"base", "libbase.so"},
		{"again", "libsample.so"},
	} {
		if err := p.Load(lib.name, lib.path, dynload.Lazy); err != nil {
			t.Fatalf("unexpected error loading %s: %v", lib.name, err)
		}
	}
	if err := p.Load("sample", "libother.so", 0); !errors.Is(err, ErrAlreadyLoad) {
		t.Errorf("unexpected error: got:%v want:%v", err, ErrAlreadyLoad)
	}
	if err := p.Load("broken", "missing.so", 0); !errors.Is(err, dynload.ErrLoad) {
		t.Errorf("unexpected error: got:%v want:%v", err, dynload.ErrLoad)
	}
	if diff := cmp.Diff([]string{"again", "base", "sample"}, p.Names()); diff != "" {
		t.Errorf("unexpected names:\n--- want:\n+++ got:\n%s", diff)
	}
	t.Log(spew.Sdump(p.Loaded))

	s, err := p.Require("sample", "Run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err = p.Require("sample", "Missing"); !errors.Is(err, dynload.ErrSymbol) {
		t.Errorf("unexpected error: got:%v want:%v", err, dynload.ErrSymbol)
	}
	if _, err = p.Require("unknown", "Run"); !errors.Is(err, ErrNotLoad) {
		t.Errorf("unexpected error: got:%v want:%v", err, ErrNotLoad)
	}

	if err = p.Reload("sample"); err != nil {
		t.Fatalf("unexpected error reloading: %v", err)
	}
	s2, err := p.Require("sample", "Run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s2 == s {
		t.Error("reload kept the old handle")
	}
	m, ok := p.Module("sample")
	if !ok || m.Path() != "libsample.so" || !m.IsLoaded() {
		t.Errorf("unexpected reloaded module: ok=%t path=%q loaded=%t", ok, m.Path(), m.IsLoaded())
	}
	if err = p.Reload("unknown"); !errors.Is(err, ErrNotLoad) {
		t.Errorf("unexpected error: got:%v want:%v", err, ErrNotLoad)
	}

	if err = p.Unload("base"); err != nil {
		t.Fatalf("unexpected error unloading: %v", err)
	}
	if err = p.Unload("base"); !errors.Is(err, ErrNotLoad) {
		t.Errorf("unexpected error: got:%v want:%v", err, ErrNotLoad)
	}
	if !m.IsLoaded() {
		t.Error("unloading base unloaded sample")
	}

	if err = p.Close(); err != nil {
		t.Fatalf("unexpected error closing: %v", err)
	}
	if len(p.Names()) != 0 || m.IsLoaded() {
		t.Errorf("pool not empty after close: %v", p.Names())
	}
	want := []string{
		"libsample.so", // reload of sample
		"libbase.so",   // unload of base
		"libsample.so", // close, sample was reloaded last
		"libsample.so", // close, again
	}
	if diff := cmp.Diff(want, l.closed); diff != "" {
		t.Errorf("unexpected unload order:\n--- want:\n+++ got:\n%s", diff)
	}
}
