package dynload

import (
	"bytes"
	"errors"
	"sync"
)

// mockLoader is an in-memory Loader.
type mockLoader struct {
	sync.Mutex
	libs     map[string]map[string]uintptr // path to symbols
	open     map[uintptr]string
	next     uintptr
	flags    []Flag
	closed   []string
	closeErr error
	anyPath  bool // open paths missing from libs as empty libraries
}

var errNoFile = errors.New("cannot open shared object file: No such file or directory")

func newMock() *mockLoader {
	return &mockLoader{
		libs: map[string]map[string]uintptr{
			"libsample.so": {"Run": 0x1000, "Const": 0x2000},
		},
		open: make(map[uintptr]string),
		next: 0x10,
	}
}

func (l *mockLoader) Open(path string, flags Flag) (uintptr, error) {
	l.Lock()
	defer l.Unlock()
	l.flags = append(l.flags, flags)
	if _, ok := l.libs[path]; !ok && !l.anyPath {
		return 0, errNoFile
	}
	l.next++
	l.open[l.next] = path
	return l.next, nil
}

func (l *mockLoader) Symbol(handle uintptr, name string) (uintptr, error) {
	l.Lock()
	defer l.Unlock()
	p, ok := l.open[handle]
	if !ok {
		return 0, errors.New("invalid handle")
	}
	if a, ok := l.libs[p][name]; ok {
		return a, nil
	}
	return 0, errors.New("undefined symbol: " + name)
}

func (l *mockLoader) Close(handle uintptr) error {
	l.Lock()
	defer l.Unlock()
	p, ok := l.open[handle]
	if !ok {
		return errors.New("invalid handle")
	}
	delete(l.open, handle)
	l.closed = append(l.closed, p)
	return l.closeErr
}

// syncBuffer is a bytes.Buffer safe to log into from finalizers.
type syncBuffer struct {
	sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.Lock()
	defer b.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.Lock()
	defer b.Unlock()
	return b.buf.String()
}

func (l *mockLoader) closedPaths() []string {
	l.Lock()
	defer l.Unlock()
	return append([]string(nil), l.closed...)
}
