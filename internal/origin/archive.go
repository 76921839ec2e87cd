package origin

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"fortio.org/safecast"
)

// Archive lists the file entries of a zip archive. The central directory is
// read once; each entry is then opened by random access, so physical entry
// order and per-entry metadata never influence the result.
type Archive struct {
	path   string
	reader *zip.ReadCloser
}

// OpenArchive opens the zip archive at path.
func OpenArchive(path string) (*Archive, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, newSourceError("open archive", path, "", classify(err), err)
	}
	if info.IsDir() {
		return nil, newSourceError("open archive", path, "", ErrFormat, errors.New("is a directory"))
	}
	reader, err := zip.OpenReader(path)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		kind := classify(err)
		if kind == ErrIO && !errors.Is(err, os.ErrPermission) {
			// Anything the zip parser rejects that is not a plain read error
			// means the container is not a usable archive.
			kind = ErrFormat
		}
		return nil, newSourceError("open archive", path, "", kind, err)
	}
	return &Archive{path: path, reader: reader}, nil
}

// Kind implements Source.
func (a *Archive) Kind() string { return "archive" }

// Root implements Source.
func (a *Archive) Root() string { return a.path }

// Close releases the archive file handle.
func (a *Archive) Close() error {
	if a.reader == nil {
		return nil
	}
	err := a.reader.Close()
	a.reader = nil
	return err
}

// Entries implements Source. Directory entries are skipped; duplicate file
// names make the archive ambiguous and are rejected.
func (a *Archive) Entries(ctx context.Context) ([]Entry, error) {
	if a.reader == nil {
		return nil, newSourceError("list archive", a.path, "", ErrIO, errors.New("archive closed"))
	}
	seen := make(map[string]struct{}, len(a.reader.File))
	entries := make([]Entry, 0, len(a.reader.File))
	for _, file := range a.reader.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := normalizeSeparators(file.Name)
		if strings.HasSuffix(name, "/") || file.FileInfo().IsDir() {
			continue
		}
		if _, dup := seen[name]; dup {
			return nil, newSourceError("list archive", a.path, name, ErrFormat, errors.New("duplicate entry name"))
		}
		seen[name] = struct{}{}

		size, err := safecast.Conv[int64](file.UncompressedSize64)
		if err != nil {
			return nil, newSourceError("list archive", a.path, name, ErrFormat, fmt.Errorf("entry size: %w", err))
		}
		zf := file
		entries = append(entries, NewEntry(name, size, func() (io.ReadCloser, error) {
			return zf.Open()
		}))
	}
	return entries, nil
}
