package origin

import (
	"context"
	"io"
)

// Entry is one logical file of a source: its slash-separated path relative to
// the source root and a way to open its content on demand.
type Entry struct {
	path string
	key  string
	size int64
	open func() (io.ReadCloser, error)
}

// NewEntry builds an entry. Backslashes in path are treated as separators.
// size is informational (progress reporting) and never enters the digest.
func NewEntry(path string, size int64, open func() (io.ReadCloser, error)) Entry {
	path = normalizeSeparators(path)
	return Entry{path: path, key: CanonicalKey(path), size: size, open: open}
}

// Path returns the case-preserved relative path.
func (e Entry) Path() string { return e.path }

// Key returns the lowercased path used for ordering and hashing.
func (e Entry) Key() string { return e.key }

// Size returns the expected content length, or -1 when unknown.
func (e Entry) Size() int64 { return e.size }

// Open returns a fresh reader over the entry content. Each call opens a new
// stream; the caller closes it.
func (e Entry) Open() (io.ReadCloser, error) {
	if e.open == nil {
		return nil, newSourceError("open", "", e.path, ErrIO, nil)
	}
	return e.open()
}

// Source enumerates the entries of one container. Entries stay openable until
// Close is called.
type Source interface {
	// Kind names the container type ("folder" or "archive").
	Kind() string
	// Root returns the path the source was opened from.
	Root() string
	// Entries lists every non-directory entry in unspecified order.
	Entries(ctx context.Context) ([]Entry, error)
	Close() error
}
