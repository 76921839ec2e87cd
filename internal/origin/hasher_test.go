package origin_test

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"originhash/internal/origin"
	"originhash/internal/testsupport"
)

const helloDigest = "BE9B194B803DFFD68999BBC6F904236A"

var sampleFiles = []testsupport.File{
	{Name: "src/main.go", Data: "package main"},
	{Name: "docs/ReadMe.md", Data: "readme"},
}

func hashFolder(t *testing.T, root string, opts ...origin.Option) origin.Result {
	t.Helper()
	res, err := origin.New(opts...).HashFolder(context.Background(), root)
	if err != nil {
		t.Fatalf("HashFolder(%s): %v", root, err)
	}
	return res
}

func hashArchive(t *testing.T, path string, opts ...origin.Option) origin.Result {
	t.Helper()
	res, err := origin.New(opts...).HashArchive(context.Background(), path)
	if err != nil {
		t.Fatalf("HashArchive(%s): %v", path, err)
	}
	return res
}

func TestHashFolderSingleFileDigest(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, testsupport.File{Name: "a.txt", Data: "hello"})

	res := hashFolder(t, root)
	if got := res.Fingerprint.String(); got != helloDigest {
		t.Fatalf("fingerprint = %s, want %s", got, helloDigest)
	}
	if res.Entries != 1 || res.Bytes != 5 {
		t.Fatalf("unexpected result counters: %+v", res)
	}

	fp, err := origin.HashFolder(root)
	if err != nil {
		t.Fatalf("package HashFolder: %v", err)
	}
	if fp.String() != helloDigest {
		t.Fatalf("package HashFolder = %s", fp)
	}
}

func TestHashFolderMixesLowercasedPaths(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, sampleFiles...)

	res := hashFolder(t, root)
	const want = "679FFE12A510E0DDE9FF545A0726AE4D"
	if got := res.Fingerprint.String(); got != want {
		t.Fatalf("fingerprint = %s, want %s", got, want)
	}
}

func TestHashFolderCaseSortOrder(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root,
		testsupport.File{Name: "a.txt", Data: "letter"},
		testsupport.File{Name: "_.txt", Data: "underscore"},
		testsupport.File{Name: "1.txt", Data: "one"},
	)

	res := hashFolder(t, root)
	// md5("1.txt" "one" "_.txt" "underscore" "a.txt" "letter")
	const want = "42971A3D548933F508CC773A582DFA77"
	if got := res.Fingerprint.String(); got != want {
		t.Fatalf("fingerprint = %s, want %s", got, want)
	}
}

func TestArchiveMatchesFolderRegardlessOfMetadata(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, sampleFiles...)
	want := hashFolder(t, root).Fingerprint

	tests := []struct {
		name  string
		opts  testsupport.ZipOptions
		files []testsupport.File
	}{
		{"stored", testsupport.ZipOptions{Method: zip.Store}, sampleFiles},
		{"deflated", testsupport.ZipOptions{Method: zip.Deflate}, sampleFiles},
		{"reversed order", testsupport.ZipOptions{Method: zip.Deflate}, testsupport.Reversed(sampleFiles)},
		{"other timestamp", testsupport.ZipOptions{Method: zip.Store, Modified: time.Date(1999, 12, 31, 23, 59, 58, 0, time.UTC)}, sampleFiles},
		{"comment and directories", testsupport.ZipOptions{Method: zip.Deflate, Comment: "built elsewhere", Dirs: []string{"docs", "src"}}, sampleFiles},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "source.zip")
			testsupport.WriteZip(t, path, tt.opts, tt.files...)
			got := hashArchive(t, path).Fingerprint
			if got != want {
				t.Fatalf("archive fingerprint %s != folder fingerprint %s", got, want)
			}
		})
	}
}

func TestArchiveSingleFileMatchesFixedDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.zip")
	testsupport.WriteZip(t, path, testsupport.ZipOptions{Method: zip.Deflate}, testsupport.File{Name: "a.txt", Data: "hello"})

	fp, err := origin.HashArchive(path)
	if err != nil {
		t.Fatalf("HashArchive: %v", err)
	}
	if fp.String() != helloDigest {
		t.Fatalf("fingerprint = %s, want %s", fp, helloDigest)
	}
}

func TestArchiveNormalizesBackslashNames(t *testing.T) {
	folder := t.TempDir()
	testsupport.WriteTree(t, folder, sampleFiles...)

	path := filepath.Join(t.TempDir(), "windows.zip")
	testsupport.WriteZip(t, path, testsupport.ZipOptions{},
		testsupport.File{Name: `src\main.go`, Data: "package main"},
		testsupport.File{Name: `docs\ReadMe.md`, Data: "readme"},
	)
	if got, want := hashArchive(t, path).Fingerprint, hashFolder(t, folder).Fingerprint; got != want {
		t.Fatalf("archive %s != folder %s", got, want)
	}
}

func TestFolderOrderInvariance(t *testing.T) {
	files := []testsupport.File{
		{Name: "b/2.bin", Data: "two"},
		{Name: "A/1.bin", Data: "one"},
		{Name: "c.txt", Data: "three"},
	}
	first := t.TempDir()
	second := t.TempDir()
	testsupport.WriteTree(t, first, files...)
	testsupport.WriteTree(t, second, testsupport.Reversed(files)...)

	if a, b := hashFolder(t, first).Fingerprint, hashFolder(t, second).Fingerprint; a != b {
		t.Fatalf("write order changed fingerprint: %s vs %s", a, b)
	}
}

func TestPathAndContentChangesAlterFingerprint(t *testing.T) {
	base := t.TempDir()
	testsupport.WriteTree(t, base, sampleFiles...)
	want := hashFolder(t, base).Fingerprint

	renamed := t.TempDir()
	testsupport.WriteTree(t, renamed,
		testsupport.File{Name: "src/app.go", Data: "package main"},
		testsupport.File{Name: "docs/ReadMe.md", Data: "readme"},
	)
	if got := hashFolder(t, renamed).Fingerprint; got == want {
		t.Fatal("renaming a file must change the fingerprint")
	}

	edited := t.TempDir()
	testsupport.WriteTree(t, edited,
		testsupport.File{Name: "src/main.go", Data: "package main\n"},
		testsupport.File{Name: "docs/ReadMe.md", Data: "readme"},
	)
	if got := hashFolder(t, edited).Fingerprint; got == want {
		t.Fatal("editing a file must change the fingerprint")
	}

	recased := t.TempDir()
	testsupport.WriteTree(t, recased,
		testsupport.File{Name: "SRC/Main.go", Data: "package main"},
		testsupport.File{Name: "docs/readme.MD", Data: "readme"},
	)
	if got := hashFolder(t, recased).Fingerprint; got != want {
		t.Fatalf("changing only path case must keep the fingerprint: %s vs %s", got, want)
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, sampleFiles...)
	first := hashFolder(t, root).Fingerprint
	for i := 0; i < 3; i++ {
		if got := hashFolder(t, root).Fingerprint; got != first {
			t.Fatalf("run %d produced %s, want %s", i, got, first)
		}
	}
}

func TestChunkSizeDoesNotAffectDigest(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "big", "blob.bin"), 100_003)
	testsupport.WriteFile(t, filepath.Join(root, "small.bin"), 17)
	testsupport.WriteTree(t, root, testsupport.File{Name: "zz-empty.txt", Data: ""})

	want := hashFolder(t, root).Fingerprint
	for _, size := range []int{1, 7, 4096, 65536, 100_003, 1 << 20} {
		if got := hashFolder(t, root, origin.WithChunkSize(size)).Fingerprint; got != want {
			t.Fatalf("chunk size %d produced %s, want %s", size, got, want)
		}
	}
}

func TestEmptyLastEntryStillFinalizes(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root,
		testsupport.File{Name: "a.txt", Data: "hello"},
		testsupport.File{Name: "b.txt", Data: ""},
	)
	// md5("a.txt" "hello" "b.txt")
	const want = "5FCEACC94B5E49A13A29133DD1BD4772"
	if got := hashFolder(t, root).Fingerprint.String(); got != want {
		t.Fatalf("fingerprint = %s, want %s", got, want)
	}
}

func TestEmptySourcesReturnSentinel(t *testing.T) {
	emptyDir := t.TempDir()
	if _, err := origin.HashFolder(emptyDir); !errors.Is(err, origin.ErrEmptySource) {
		t.Fatalf("empty folder: got %v, want ErrEmptySource", err)
	}

	onlyDirs := t.TempDir()
	if err := os.MkdirAll(filepath.Join(onlyDirs, "a", "b"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := origin.HashFolder(onlyDirs); !errors.Is(err, origin.ErrEmptySource) {
		t.Fatalf("folder of directories: got %v, want ErrEmptySource", err)
	}

	emptyZip := filepath.Join(t.TempDir(), "empty.zip")
	testsupport.WriteZip(t, emptyZip, testsupport.ZipOptions{})
	if _, err := origin.HashArchive(emptyZip); !errors.Is(err, origin.ErrEmptySource) {
		t.Fatalf("empty archive: got %v, want ErrEmptySource", err)
	}

	dirZip := filepath.Join(t.TempDir(), "dirs.zip")
	testsupport.WriteZip(t, dirZip, testsupport.ZipOptions{Dirs: []string{"a", "a/b"}})
	if _, err := origin.HashArchive(dirZip); !errors.Is(err, origin.ErrEmptySource) {
		t.Fatalf("archive of directories: got %v, want ErrEmptySource", err)
	}
}

func TestSourceErrors(t *testing.T) {
	base := t.TempDir()
	plain := filepath.Join(base, "plain.txt")
	testsupport.WriteTree(t, base, testsupport.File{Name: "plain.txt", Data: "not a zip"})

	dupZip := filepath.Join(base, "dup.zip")
	testsupport.WriteZip(t, dupZip, testsupport.ZipOptions{},
		testsupport.File{Name: "a.txt", Data: "one"},
		testsupport.File{Name: "a.txt", Data: "two"},
	)

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"missing folder", func() error { _, err := origin.HashFolder(filepath.Join(base, "nope")); return err }, origin.ErrNotFound},
		{"file as folder", func() error { _, err := origin.HashFolder(plain); return err }, origin.ErrFormat},
		{"missing archive", func() error { _, err := origin.HashArchive(filepath.Join(base, "nope.zip")); return err }, origin.ErrNotFound},
		{"corrupt archive", func() error { _, err := origin.HashArchive(plain); return err }, origin.ErrFormat},
		{"directory as archive", func() error { _, err := origin.HashArchive(base); return err }, origin.ErrFormat},
		{"duplicate archive entry", func() error { _, err := origin.HashArchive(dupZip); return err }, origin.ErrFormat},
		{"missing file", func() error { _, err := origin.HashFile(filepath.Join(base, "nope")); return err }, origin.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			var srcErr *origin.SourceError
			if !errors.As(err, &srcErr) {
				t.Fatalf("expected *SourceError, got %T", err)
			}
			if origin.Kind(err) != tt.want {
				t.Fatalf("Kind = %v, want %v", origin.Kind(err), tt.want)
			}
		})
	}
}

func TestUnreadableEntryAbortsWithIOError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	testsupport.WriteTree(t, root, sampleFiles...)
	locked := filepath.Join(root, "src", "main.go")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	_, err := origin.HashFolder(root)
	if !errors.Is(err, origin.ErrIO) {
		t.Fatalf("got %v, want ErrIO", err)
	}
	var srcErr *origin.SourceError
	if !errors.As(err, &srcErr) || srcErr.Entry != "src/main.go" {
		t.Fatalf("expected entry in error, got %v", err)
	}
}

func TestHashFileIgnoresPath(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteTree(t, dir,
		testsupport.File{Name: "one.txt", Data: "hello"},
		testsupport.File{Name: "Other Name.bin", Data: "hello"},
	)
	a, err := origin.HashFile(filepath.Join(dir, "one.txt"))
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	b, err := origin.HashFile(filepath.Join(dir, "Other Name.bin"))
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if a != b || a.String() != "5D41402ABC4B2A76B9719D911017C592" {
		t.Fatalf("HashFile digests %s / %s", a, b)
	}
}

func TestProgressReportsAllBytes(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "data.bin"), 10_000)
	testsupport.WriteTree(t, root, testsupport.File{Name: "note.txt", Data: "note"})

	var last origin.Progress
	calls := 0
	res := hashFolder(t, root,
		origin.WithChunkSize(1024),
		origin.WithProgress(func(p origin.Progress) {
			calls++
			last = p
		}),
	)
	if calls == 0 {
		t.Fatal("expected progress callbacks")
	}
	if last.Done != res.Bytes || last.Total != 10_004 {
		t.Fatalf("final progress %+v, result bytes %d", last, res.Bytes)
	}
	if last.Percent() != 100 {
		t.Fatalf("final percent = %v", last.Percent())
	}
}

func TestCanceledContextStopsHashing(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, sampleFiles...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := origin.New().HashFolder(ctx, root)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestHashSourceH1AgreesAcrossContainers(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, sampleFiles...)
	zipPath := filepath.Join(t.TempDir(), "src.zip")
	testsupport.WriteZip(t, zipPath, testsupport.ZipOptions{Method: zip.Deflate}, testsupport.Reversed(sampleFiles)...)

	h := origin.New()
	folder, err := origin.OpenFolder(root)
	if err != nil {
		t.Fatalf("OpenFolder: %v", err)
	}
	folderSum, n, err := h.HashSourceH1(context.Background(), folder)
	if err != nil {
		t.Fatalf("HashSourceH1 folder: %v", err)
	}
	if n != 2 || !strings.HasPrefix(folderSum, "h1:") {
		t.Fatalf("unexpected h1 result %q (%d entries)", folderSum, n)
	}

	archive, err := origin.OpenArchive(zipPath)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer archive.Close()
	archiveSum, _, err := h.HashSourceH1(context.Background(), archive)
	if err != nil {
		t.Fatalf("HashSourceH1 archive: %v", err)
	}
	if archiveSum != folderSum {
		t.Fatalf("h1 archive %s != folder %s", archiveSum, folderSum)
	}
}
