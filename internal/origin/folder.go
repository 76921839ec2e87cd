package origin

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Folder lists the files below a directory root, recursively.
type Folder struct {
	root           string
	followSymlinks bool
	logger         *slog.Logger
}

// FolderOption customizes a Folder source.
type FolderOption func(*Folder)

// WithSymlinks controls whether symbolic links to regular files are listed.
// Links to directories are never descended into.
func WithSymlinks(follow bool) FolderOption {
	return func(f *Folder) { f.followSymlinks = follow }
}

// WithFolderLogger routes skip notices to logger.
func WithFolderLogger(logger *slog.Logger) FolderOption {
	return func(f *Folder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// OpenFolder validates root and returns a source over it.
func OpenFolder(root string, opts ...FolderOption) (*Folder, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, newSourceError("open folder", root, "", classify(err), err)
	}
	if !info.IsDir() {
		return nil, newSourceError("open folder", root, "", ErrFormat, errors.New("not a directory"))
	}
	f := &Folder{root: filepath.Clean(root), followSymlinks: true, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Kind implements Source.
func (f *Folder) Kind() string { return "folder" }

// Root implements Source.
func (f *Folder) Root() string { return f.root }

// Close implements Source.
func (f *Folder) Close() error { return nil }

// Entries implements Source.
func (f *Folder) Entries(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			kind := ErrIO
			if path == f.root {
				kind = classify(err)
			}
			return newSourceError("walk", f.root, f.relative(path), kind, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		size, ok, err := f.fileSize(path, d)
		if err != nil {
			return newSourceError("stat", f.root, f.relative(path), ErrIO, err)
		}
		if !ok {
			f.logger.Debug("skipping non-regular entry",
				slog.String("entry", f.relative(path)),
				slog.String("mode", d.Type().String()),
			)
			return nil
		}
		abs := path
		entries = append(entries, NewEntry(f.relative(path), size, func() (io.ReadCloser, error) {
			return os.Open(abs)
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (f *Folder) fileSize(path string, d fs.DirEntry) (int64, bool, error) {
	mode := d.Type()
	switch {
	case mode.IsRegular():
		info, err := d.Info()
		if err != nil {
			return 0, false, err
		}
		return info.Size(), true, nil
	case mode&fs.ModeSymlink != 0:
		if !f.followSymlinks {
			return 0, false, nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return 0, false, err
		}
		if !info.Mode().IsRegular() {
			return 0, false, nil
		}
		return info.Size(), true, nil
	default:
		return 0, false, nil
	}
}

func (f *Folder) relative(path string) string {
	rel, err := filepath.Rel(f.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
