package blob

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// DefaultUploadDir is where uploads land when no directory is configured.
const DefaultUploadDir = "uploads"

// ErrNotExist is returned by backends when the requested file or object is absent.
var ErrNotExist = errors.New("blob does not exist")

// LocalBackend stores files under a root directory of an afero filesystem.
type LocalBackend struct {
	fs   afero.Fs
	root string
}

// NewLocalBackend creates a LocalBackend rooted at root on the OS filesystem.
func NewLocalBackend(root string) *LocalBackend {
	return NewLocalBackendFs(afero.NewOsFs(), root)
}

// NewLocalBackendFs creates a LocalBackend on an arbitrary afero filesystem.
func NewLocalBackendFs(fsys afero.Fs, root string) *LocalBackend {
	if root == "" {
		root = DefaultUploadDir
	}
	return &LocalBackend{fs: fsys, root: root}
}

// Root returns the upload directory.
func (b *LocalBackend) Root() string {
	return b.root
}

// Write stores data as name under the root using a temp file and a rename.
// Missing parent directories are created.
func (b *LocalBackend) Write(name string, data []byte) (LocalLocator, error) {
	dest := filepath.Join(b.root, name)
	if err := b.fs.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return LocalLocator{}, fmt.Errorf("mkdir %q: %w", filepath.Dir(dest), err)
	}

	tmp := dest + ".tmp"
	f, err := b.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return LocalLocator{}, fmt.Errorf("open tmp %q: %w", tmp, err)
	}
	_, werr := io.Copy(f, bytes.NewReader(data))
	cerr := f.Close()
	if werr != nil {
		_ = b.fs.Remove(tmp)
		return LocalLocator{}, fmt.Errorf("write %q: %w", tmp, werr)
	}
	if cerr != nil {
		_ = b.fs.Remove(tmp)
		return LocalLocator{}, fmt.Errorf("flush %q: %w", tmp, cerr)
	}
	if err := b.fs.Rename(tmp, dest); err != nil {
		_ = b.fs.Remove(tmp)
		return LocalLocator{}, fmt.Errorf("rename to %q: %w", dest, err)
	}
	return LocalLocator{Path: dest}, nil
}

// Read returns the content of the file at loc.Path. The path is used as
// stored, it is not resolved against the root.
func (b *LocalBackend) Read(loc LocalLocator) ([]byte, error) {
	data, err := afero.ReadFile(b.fs, loc.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, loc.Path)
		}
		return nil, err
	}
	return data, nil
}
