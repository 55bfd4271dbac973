package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Disk stores assets as plain files under a root directory. The root is
// created lazily on first store. Rename maps to os.Rename and is atomic
// within one filesystem.
type Disk struct {
	root string
}

// NewDisk returns a disk-backed asset store rooted at dir.
func NewDisk(dir string) *Disk {
	return &Disk{root: dir}
}

// Root returns the upload directory, for serving files over HTTP.
func (d *Disk) Root() string { return d.root }

// path resolves filename inside the root, refusing traversal outside it.
func (d *Disk) path(filename string) (string, error) {
	clean := filepath.Clean(filename)
	if clean != filepath.Base(clean) || strings.HasPrefix(clean, ".") {
		return "", fmt.Errorf("illegal asset name %q", filename)
	}
	return filepath.Join(d.root, clean), nil
}

// Store writes the reader's bytes under filename, creating the root
// directory on first use.
func (d *Disk) Store(_ context.Context, filename string, r io.Reader) error {
	target, err := d.path(filename)
	if err != nil {
		return &Error{Op: "store", Filename: filename, Err: err}
	}

	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return &Error{Op: "store", Filename: filename, Err: err}
	}

	f, err := os.Create(target)
	if err != nil {
		return &Error{Op: "store", Filename: filename, Err: err}
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return &Error{Op: "store", Filename: filename, Err: err}
	}

	if err := f.Close(); err != nil {
		return &Error{Op: "store", Filename: filename, Err: err}
	}
	return nil
}

// Rename atomically moves oldFilename to newFilename.
func (d *Disk) Rename(_ context.Context, oldFilename, newFilename string) error {
	oldPath, err := d.path(oldFilename)
	if err != nil {
		return &Error{Op: "rename", Filename: oldFilename, Err: err}
	}
	newPath, err := d.path(newFilename)
	if err != nil {
		return &Error{Op: "rename", Filename: newFilename, Err: err}
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return &Error{Op: "rename", Filename: oldFilename, Err: err}
	}
	return nil
}

// Delete removes filename. Deleting a file that is already gone is not an
// error: the caller treats delete failures as warnings anyway, and a
// missing file means the desired state already holds.
func (d *Disk) Delete(_ context.Context, filename string) error {
	target, err := d.path(filename)
	if err != nil {
		return &Error{Op: "delete", Filename: filename, Err: err}
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return &Error{Op: "delete", Filename: filename, Err: err}
	}
	return nil
}
