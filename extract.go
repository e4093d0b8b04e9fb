package dynload

import (
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/ZenLiuCN/fn"
)

// Extract copies the library name out of fsys into dir and returns the path of the copy.
// An empty dir means a new temporary directory, which is removed again on failure and
// otherwise belongs to the caller. It is the way to load libraries shipped inside an [embed.FS].
func Extract(fsys fs.FS, name, dir string) (dest string, err error) {
	if dir == "" {
		if dir, err = os.MkdirTemp("", "dynload-"); err != nil {
			return
		}
		defer func() {
			if err != nil {
				_ = os.RemoveAll(dir)
			}
		}()
	}
	sf, err := fsys.Open(name)
	if err != nil {
		return
	}
	defer fn.IgnoreClose(sf)
	dest = filepath.Join(dir, path.Base(name))
	df, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
	if err != nil {
		return "", err
	}
	if _, err = io.Copy(df, sf); err != nil {
		_ = df.Close()
		return "", err
	}
	if err = df.Close(); err != nil {
		return "", err
	}
	return
}

// OpenFS extracts name from fsys into a temporary directory and opens it.
// The directory is removed when the library is unloaded or fails to load.
func OpenFS(fsys fs.FS, name string, flags Flag, opts ...Option) (*Module, error) {
	p, err := Extract(fsys, name, "")
	if err != nil {
		return nil, &Error{Kind: ErrLoad, Path: name, Err: err}
	}
	dir := filepath.Dir(p)
	m, err := Open(p, flags, opts...)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	m.lib.tmp = dir
	return m, nil
}
