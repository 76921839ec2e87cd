package batch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"originhash/internal/batch"
	"originhash/internal/origin"
	"originhash/internal/testsupport"
)

const helloDigest = "BE9B194B803DFFD68999BBC6F904236A"

func TestRunPreservesRequestOrderAcrossKinds(t *testing.T) {
	base := t.TempDir()
	folder := filepath.Join(base, "tree")
	testsupport.WriteTree(t, folder, testsupport.File{Name: "a.txt", Data: "hello"})
	archive := filepath.Join(base, "tree.zip")
	testsupport.WriteZip(t, archive, testsupport.ZipOptions{}, testsupport.File{Name: "a.txt", Data: "hello"})
	file := filepath.Join(base, "plain.txt")
	testsupport.WriteTree(t, base, testsupport.File{Name: "plain.txt", Data: "hello"})

	runner := batch.NewRunner(batch.Options{Jobs: 2})
	results, err := runner.Run(context.Background(), []batch.Request{
		{Path: archive, Kind: batch.KindAuto},
		{Path: file, Kind: batch.KindFile},
		{Path: folder, Kind: batch.KindAuto},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	want := []struct {
		path   string
		kind   batch.Kind
		digest string
	}{
		{archive, batch.KindArchive, helloDigest},
		{file, batch.KindFile, "5D41402ABC4B2A76B9719D911017C592"},
		{folder, batch.KindFolder, helloDigest},
	}
	for i, w := range want {
		got := results[i]
		if got.Path != w.path || got.Kind != w.kind || got.Digest != w.digest {
			t.Fatalf("result %d = %+v, want path=%s kind=%s digest=%s", i, got, w.path, w.kind, w.digest)
		}
		if got.Err != nil {
			t.Fatalf("result %d unexpected error: %v", i, got.Err)
		}
	}
	if batch.Failed(results) != 0 {
		t.Fatalf("expected no failures")
	}
}

func TestRunKeepGoingRecordsFailures(t *testing.T) {
	base := t.TempDir()
	folder := filepath.Join(base, "tree")
	testsupport.WriteTree(t, folder, testsupport.File{Name: "a.txt", Data: "hello"})
	empty := filepath.Join(base, "empty")
	if err := os.MkdirAll(empty, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	missing := filepath.Join(base, "missing.zip")

	runner := batch.NewRunner(batch.Options{Jobs: 1, KeepGoing: true})
	results, err := runner.Run(context.Background(), []batch.Request{
		{Path: missing},
		{Path: folder},
		{Path: empty, Kind: batch.KindFolder},
	})
	if err != nil {
		t.Fatalf("Run with KeepGoing returned %v", err)
	}
	if batch.Failed(results) != 2 {
		t.Fatalf("expected 2 failures, got %d", batch.Failed(results))
	}
	if !errors.Is(results[0].Err, origin.ErrNotFound) {
		t.Fatalf("missing source error = %v, want ErrNotFound", results[0].Err)
	}
	if results[1].Digest != helloDigest {
		t.Fatalf("folder digest = %s", results[1].Digest)
	}
	if !errors.Is(results[2].Err, origin.ErrEmptySource) {
		t.Fatalf("empty folder error = %v, want ErrEmptySource", results[2].Err)
	}
}

func TestRunStopsOnFirstFailureWithoutKeepGoing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	runner := batch.NewRunner(batch.Options{Jobs: 1})
	_, err := runner.Run(context.Background(), []batch.Request{{Path: missing, Kind: batch.KindFolder}})
	if err == nil {
		t.Fatal("expected error")
	}
	if origin.Kind(err) != origin.ErrNotFound {
		t.Fatalf("Kind(err) = %v, want ErrNotFound", origin.Kind(err))
	}
}

func TestRunH1SchemeMatchesAcrossContainers(t *testing.T) {
	base := t.TempDir()
	files := []testsupport.File{
		{Name: "b.txt", Data: "bee"},
		{Name: "dir/a.txt", Data: "ay"},
	}
	folder := filepath.Join(base, "tree")
	testsupport.WriteTree(t, folder, files...)
	archive := filepath.Join(base, "tree.zip")
	testsupport.WriteZip(t, archive, testsupport.ZipOptions{}, testsupport.Reversed(files)...)

	runner := batch.NewRunner(batch.Options{Scheme: batch.SchemeH1})
	results, err := runner.Run(context.Background(), []batch.Request{{Path: folder}, {Path: archive}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, res := range results {
		if res.Scheme != batch.SchemeH1 {
			t.Fatalf("unexpected scheme %s", res.Scheme)
		}
		if !strings.HasPrefix(res.Digest, "h1:") {
			t.Fatalf("digest %q lacks h1 prefix", res.Digest)
		}
		if res.Entries != 2 {
			t.Fatalf("entries = %d, want 2", res.Entries)
		}
	}
	if results[0].Digest != results[1].Digest {
		t.Fatalf("folder %s != archive %s", results[0].Digest, results[1].Digest)
	}
}

func TestRunHonoursCanceledContext(t *testing.T) {
	folder := t.TempDir()
	testsupport.WriteTree(t, folder, testsupport.File{Name: "a.txt", Data: "hello"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := batch.NewRunner(batch.Options{KeepGoing: true})
	results, err := runner.Run(ctx, []batch.Request{{Path: folder}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", results[0].Err)
	}
}

func TestParseScheme(t *testing.T) {
	tests := []struct {
		in   string
		want batch.Scheme
		ok   bool
	}{
		{"", batch.SchemeOrigin, true},
		{"Origin", batch.SchemeOrigin, true},
		{" h1 ", batch.SchemeH1, true},
		{"sha256", "", false},
	}
	for _, tt := range tests {
		got, err := batch.ParseScheme(tt.in)
		if (err == nil) != tt.ok {
			t.Fatalf("ParseScheme(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseScheme(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	base := t.TempDir()
	archive := filepath.Join(base, "x.zip")
	testsupport.WriteZip(t, archive, testsupport.ZipOptions{}, testsupport.File{Name: "a", Data: "a"})

	if kind, err := batch.Resolve(base, batch.KindAuto); err != nil || kind != batch.KindFolder {
		t.Fatalf("Resolve(dir) = %s, %v", kind, err)
	}
	if kind, err := batch.Resolve(archive, ""); err != nil || kind != batch.KindArchive {
		t.Fatalf("Resolve(zip) = %s, %v", kind, err)
	}
	if kind, err := batch.Resolve(base, batch.KindFile); err != nil || kind != batch.KindFile {
		t.Fatalf("explicit kind must pass through, got %s, %v", kind, err)
	}
	if _, err := batch.Resolve(filepath.Join(base, "nope"), batch.KindAuto); !errors.Is(err, origin.ErrNotFound) {
		t.Fatalf("Resolve(missing) = %v", err)
	}
	if _, err := batch.Resolve(base, "tarball"); err == nil {
		t.Fatal("expected unknown kind error")
	}
}
