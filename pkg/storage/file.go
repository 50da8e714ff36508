package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/brimdata/airindex/aie"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const propsSuffix = ".props"

// FileSystem stores each segment object as a plain file next to a YAML
// sidecar holding its block count and seal state.
type FileSystem struct {
	perm   os.FileMode
	mu     sync.Mutex
	exists map[string]struct{}
}

var _ Engine = (*FileSystem)(nil)

func NewFileSystem() *FileSystem {
	return &FileSystem{
		perm:   0666,
		exists: make(map[string]struct{}),
	}
}

func (f *FileSystem) Open(context.Context, map[string]string) error { return nil }

func (f *FileSystem) Close() error { return nil }

func (f *FileSystem) Create(_ context.Context, u *URI) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := u.Filepath()
	if err := f.checkPath(path); err != nil {
		return wrapfileError(u, err)
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, f.perm)
	if err != nil {
		if os.IsExist(err) {
			return ErrExists
		}
		return wrapfileError(u, err)
	}
	if err := file.Close(); err != nil {
		return err
	}
	return f.writeProps(u, Props{})
}

func (f *FileSystem) Remove(_ context.Context, u *URI) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(u.Filepath()); err != nil {
		return wrapfileError(u, err)
	}
	err := os.Remove(u.Filepath() + propsSuffix)
	if os.IsNotExist(err) {
		err = nil
	}
	return err
}

func (f *FileSystem) GetSize(_ context.Context, u *URI) (int64, error) {
	info, err := os.Stat(u.Filepath())
	if err != nil {
		return 0, wrapfileError(u, err)
	}
	return info.Size(), nil
}

func (f *FileSystem) GetProps(ctx context.Context, u *URI) (Props, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.props(u)
}

func (f *FileSystem) props(u *URI) (Props, error) {
	info, err := os.Stat(u.Filepath())
	if err != nil {
		return Props{}, wrapfileError(u, err)
	}
	var props Props
	b, err := os.ReadFile(u.Filepath() + propsSuffix)
	if err != nil && !os.IsNotExist(err) {
		return Props{}, err
	}
	if err == nil {
		if err := yaml.Unmarshal(b, &props); err != nil {
			return Props{}, aie.E(aie.Storage, "%s: bad props sidecar: %w", u, err)
		}
	}
	props.SegmentLength = info.Size()
	return props, nil
}

func (f *FileSystem) writeProps(u *URI, props Props) error {
	b, err := yaml.Marshal(props)
	if err != nil {
		return err
	}
	return os.WriteFile(u.Filepath()+propsSuffix, b, f.perm)
}

func (f *FileSystem) Seal(_ context.Context, u *URI) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	props, err := f.props(u)
	if err != nil {
		return err
	}
	props.Sealed = true
	return f.writeProps(u, props)
}

func (f *FileSystem) Append(_ context.Context, u *URI, b []byte) (int, error) {
	if len(b) == 0 {
		return 0, ErrEmptyBlock
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	props, err := f.props(u)
	if err != nil {
		return 0, err
	}
	if props.Sealed {
		return 0, ErrSealed
	}
	file, err := os.OpenFile(u.Filepath(), os.O_WRONLY|os.O_APPEND, f.perm)
	if err != nil {
		return 0, wrapfileError(u, err)
	}
	_, err = file.Write(b)
	if err = multierr.Append(err, file.Close()); err != nil {
		return 0, err
	}
	props.BlockCount++
	if err := f.writeProps(u, props); err != nil {
		return 0, err
	}
	return props.BlockCount - 1, nil
}

func (f *FileSystem) ReadAll(_ context.Context, u *URI) ([]byte, error) {
	b, err := os.ReadFile(u.Filepath())
	return b, wrapfileError(u, err)
}

func (f *FileSystem) ReadRange(_ context.Context, u *URI, offset, length int64) ([]byte, error) {
	file, err := os.Open(u.Filepath())
	if err != nil {
		return nil, wrapfileError(u, err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if err := checkRange(info.Size(), offset, length); err != nil {
		return nil, err
	}
	b := make([]byte, length)
	if _, err := file.ReadAt(b, offset); err != nil && !(errors.Is(err, io.EOF) && length == 0) {
		return nil, err
	}
	return b, nil
}

func (f *FileSystem) WriteAll(_ context.Context, u *URI, b []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := u.Filepath()
	if err := f.checkPath(path); err != nil {
		return wrapfileError(u, err)
	}
	props, err := f.props(u)
	if err != nil && !aie.IsKind(err, aie.NotFound) {
		return err
	}
	if props.Sealed {
		return ErrSealed
	}
	// Write to a temporary file and rename so readers never see a
	// partially written object.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, f.perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return multierr.Append(err, os.Remove(tmp))
	}
	return f.writeProps(u, Props{BlockCount: 1})
}

func (f *FileSystem) checkPath(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if _, ok := f.exists[dir]; ok {
		return nil
	}
	err := os.MkdirAll(dir, 0755)
	if os.IsExist(err) {
		err = nil
	}
	if err == nil {
		f.exists[dir] = struct{}{}
	}
	return err
}

func wrapfileError(uri *URI, err error) error {
	if os.IsNotExist(err) {
		return aie.E(aie.NotFound, uri.String())
	}
	return err
}
