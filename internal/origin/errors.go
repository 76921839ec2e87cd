package origin

import (
	"archive/zip"
	"errors"
	"io/fs"
	"strings"
)

var (
	// ErrNotFound reports that the source root or archive path does not exist.
	ErrNotFound = errors.New("source not found")
	// ErrFormat reports a source that is not a valid container of the requested kind.
	ErrFormat = errors.New("invalid container format")
	// ErrIO reports a read or permission failure on the source or one of its entries.
	ErrIO = errors.New("read failure")
	// ErrEmptySource reports a source without any file entries. It is never
	// folded into a digest of zero bytes.
	ErrEmptySource = errors.New("source contains no files")
	// ErrFinalized reports an update against a hash context that already
	// produced its digest.
	ErrFinalized = errors.New("hash context already finalized")
)

// SourceError records which operation failed on which source and entry. Kind
// is one of the package sentinels; Err is the underlying cause, if any.
type SourceError struct {
	Op    string
	Path  string
	Entry string
	Kind  error
	Err   error
}

func (e *SourceError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteByte(' ')
		b.WriteString(e.Path)
	}
	if e.Entry != "" {
		b.WriteString(" [")
		b.WriteString(e.Entry)
		b.WriteByte(']')
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *SourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newSourceError(op, path, entry string, kind, cause error) *SourceError {
	return &SourceError{Op: op, Path: path, Entry: entry, Kind: kind, Err: cause}
}

// classify maps filesystem and zip failures onto the package sentinels.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, zip.ErrFormat),
		errors.Is(err, zip.ErrAlgorithm),
		errors.Is(err, zip.ErrChecksum):
		return ErrFormat
	default:
		return ErrIO
	}
}

// Kind returns the package sentinel carried by err, or nil when err did not
// originate here.
func Kind(err error) error {
	for _, kind := range []error{ErrNotFound, ErrFormat, ErrEmptySource, ErrIO, ErrFinalized} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
