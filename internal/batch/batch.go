package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"originhash/internal/logging"
	"originhash/internal/origin"
)

// Kind selects how a source path is interpreted.
type Kind string

const (
	KindAuto    Kind = "auto"
	KindFile    Kind = "file"
	KindFolder  Kind = "folder"
	KindArchive Kind = "archive"
)

// Scheme selects the digest algorithm applied to folder and archive sources.
type Scheme string

const (
	// SchemeOrigin is the MD5 origin fingerprint.
	SchemeOrigin Scheme = "origin"
	// SchemeH1 is the Go module directory hash over the same entries.
	SchemeH1 Scheme = "h1"
)

// ParseScheme validates a scheme name; empty selects SchemeOrigin.
func ParseScheme(value string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(value))) {
	case "", SchemeOrigin:
		return SchemeOrigin, nil
	case SchemeH1:
		return SchemeH1, nil
	default:
		return "", fmt.Errorf("unsupported scheme %q (want origin or h1)", value)
	}
}

// Request names one source to hash.
type Request struct {
	Path string
	Kind Kind
}

// Result is the outcome for one request. Err is set when that source failed.
type Result struct {
	Path    string
	Kind    Kind
	Scheme  Scheme
	Digest  string
	Entries int
	Bytes   int64
	Elapsed time.Duration
	Err     error
}

// Options configures a Runner.
type Options struct {
	Hasher *origin.Hasher
	// Jobs bounds how many sources are hashed at once; <= 0 uses GOMAXPROCS.
	Jobs   int
	Scheme Scheme
	// KeepGoing records per-source failures instead of aborting the batch.
	KeepGoing bool
	Logger    *slog.Logger
}

// Runner hashes independent sources in parallel. Every source gets its own
// hash context; nothing is shared between them.
type Runner struct {
	hasher    *origin.Hasher
	jobs      int
	scheme    Scheme
	keepGoing bool
	logger    *slog.Logger
}

// NewRunner builds a Runner from opts.
func NewRunner(opts Options) *Runner {
	hasher := opts.Hasher
	if hasher == nil {
		hasher = origin.New()
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	scheme := opts.Scheme
	if scheme == "" {
		scheme = SchemeOrigin
	}
	return &Runner{
		hasher:    hasher,
		jobs:      jobs,
		scheme:    scheme,
		keepGoing: opts.KeepGoing,
		logger:    logging.NewComponentLogger(opts.Logger, "batch"),
	}
}

// Run hashes every request and returns results in request order. Without
// KeepGoing the first failure cancels the remaining sources and is returned.
func (r *Runner) Run(ctx context.Context, reqs []Request) ([]Result, error) {
	results := make([]Result, len(reqs))
	if len(reqs) == 0 {
		return results, nil
	}

	logger := logging.WithContext(ctx, r.logger)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(r.jobs, len(reqs)))

	for i, req := range reqs {
		g.Go(func() error {
			res := r.runOne(gctx, logger, req)
			results[i] = res
			if res.Err != nil {
				logger.Warn("source failed",
					logging.Args(
						logging.String(logging.FieldSource, res.Path),
						logging.String(logging.FieldKind, string(res.Kind)),
						logging.Error(res.Err),
					)...,
				)
				if !r.keepGoing {
					return res.Err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, logger *slog.Logger, req Request) Result {
	res := Result{Path: req.Path, Kind: req.Kind, Scheme: r.scheme}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	kind, err := Resolve(req.Path, req.Kind)
	if err != nil {
		res.Err = err
		return res
	}
	res.Kind = kind

	started := time.Now()
	switch {
	case kind == KindFile:
		out, err := r.hasher.HashFile(ctx, req.Path)
		res.Scheme = SchemeOrigin
		fill(&res, out, err)
	case r.scheme == SchemeH1:
		src, err := r.openSource(logger, kind, req.Path)
		if err != nil {
			res.Err = err
			return res
		}
		defer src.Close()
		sum, n, err := r.hasher.HashSourceH1(ctx, src)
		res.Digest, res.Entries, res.Err = sum, n, err
	default:
		src, err := r.openSource(logger, kind, req.Path)
		if err != nil {
			res.Err = err
			return res
		}
		defer src.Close()
		out, err := r.hasher.HashSource(ctx, src)
		fill(&res, out, err)
	}
	res.Elapsed = time.Since(started)
	if res.Err == nil {
		logger.Info("source hashed",
			logging.Args(
				logging.String(logging.FieldSource, res.Path),
				logging.String(logging.FieldKind, string(res.Kind)),
				logging.String("digest", res.Digest),
				logging.Int("entries", res.Entries),
				logging.Duration("elapsed", res.Elapsed),
			)...,
		)
	}
	return res
}

func (r *Runner) openSource(logger *slog.Logger, kind Kind, path string) (origin.Source, error) {
	switch kind {
	case KindFolder:
		return origin.OpenFolder(path,
			origin.WithSymlinks(r.hasher.FollowSymlinks()),
			origin.WithFolderLogger(logger),
		)
	case KindArchive:
		return origin.OpenArchive(path)
	default:
		return nil, fmt.Errorf("no source type for kind %q", kind)
	}
}

func fill(res *Result, out origin.Result, err error) {
	if err != nil {
		res.Err = err
		return
	}
	res.Digest = out.Fingerprint.String()
	res.Entries = out.Entries
	res.Bytes = out.Bytes
}

// Resolve turns KindAuto into a concrete kind: directories are folders and
// other paths are archives. Explicit kinds pass through unchanged.
func Resolve(path string, kind Kind) (Kind, error) {
	switch kind {
	case KindFile, KindFolder, KindArchive:
		return kind, nil
	case KindAuto, "":
	default:
		return "", fmt.Errorf("unknown source kind %q", kind)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &origin.SourceError{Op: "resolve", Path: path, Kind: origin.ErrNotFound, Err: err}
		}
		return "", &origin.SourceError{Op: "resolve", Path: path, Kind: origin.ErrIO, Err: err}
	}
	if info.IsDir() {
		return KindFolder, nil
	}
	return KindArchive, nil
}

// Failed counts results carrying an error.
func Failed(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
