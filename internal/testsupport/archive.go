package testsupport

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// ZipOptions controls the container metadata of archives built by WriteZip.
// None of it may influence an origin fingerprint.
type ZipOptions struct {
	Method   uint16
	Modified time.Time
	Comment  string
	// Dirs adds explicit directory entries ("name/") before the files.
	Dirs []string
}

// WriteZip writes files into a new zip archive at path, in the given order.
func WriteZip(t testing.TB, path string, opts ZipOptions, files ...File) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer out.Close()

	modified := opts.Modified
	if modified.IsZero() {
		modified = time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	}

	zw := zip.NewWriter(out)
	for _, dir := range opts.Dirs {
		header := &zip.FileHeader{Name: dir + "/", Modified: modified}
		header.SetMode(0o755 | os.ModeDir)
		if _, err := zw.CreateHeader(header); err != nil {
			t.Fatalf("zip dir %s: %v", dir, err)
		}
	}
	for _, f := range files {
		header := &zip.FileHeader{Name: f.Name, Method: opts.Method, Modified: modified}
		w, err := zw.CreateHeader(header)
		if err != nil {
			t.Fatalf("zip header %s: %v", f.Name, err)
		}
		if _, err := w.Write([]byte(f.Data)); err != nil {
			t.Fatalf("zip write %s: %v", f.Name, err)
		}
	}
	if opts.Comment != "" {
		if err := zw.SetComment(opts.Comment); err != nil {
			t.Fatalf("zip comment: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip %s: %v", path, err)
	}
}
