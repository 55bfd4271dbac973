// Package assets stores the image files backing catalog items. A file's
// lifetime must track its owning item row: created with it, renamed when
// the category or item slug changes, deleted when the item goes away.
// Backends know nothing about categories or items beyond the filename
// strings they are handed.
package assets

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Store is the asset backend contract. Rename is atomic on the disk
// backend; backends that move data in parts (S3) report failure and leave
// the caller to abort — the caller must not assume the old file survived.
type Store interface {
	Store(ctx context.Context, filename string, r io.Reader) error
	Rename(ctx context.Context, oldFilename, newFilename string) error
	Delete(ctx context.Context, filename string) error
}

// Error tags an asset failure with the step that produced it so callers
// can choose abort (store/rename) versus warn-and-continue (delete).
type Error struct {
	Op       string // "store", "rename", or "delete"
	Filename string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("asset %s %s: %v", e.Op, e.Filename, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// allowedExtensions is the upload admission list. Anything else is
// silently ignored rather than rejected.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Allowed reports whether a filename's extension (case-insensitive) is an
// admissible image type.
func Allowed(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Filename computes the deterministic asset name for an item. It depends
// only on the two slugs, so it can always be recomputed after a rename
// without separate bookkeeping.
func Filename(categorySlug, itemSlug string) string {
	return categorySlug + "__" + itemSlug + ".jpg"
}
