package origin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"
)

// DefaultChunkSize is the read size used when streaming entry content. It only
// affects I/O; the digest is the same for every chunk size.
const DefaultChunkSize = 16 << 20

// Progress describes how far a single hashing run has advanced.
type Progress struct {
	Root  string
	Entry string
	Done  int64
	Total int64
}

// Percent returns completion in [0,100], or -1 when the total is unknown.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return -1
	}
	pct := float64(p.Done) / float64(p.Total) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// ProgressFunc receives progress after every chunk. It runs on the hashing
// goroutine and must not block for long.
type ProgressFunc func(Progress)

// Result summarizes one hashing run.
type Result struct {
	Fingerprint Fingerprint
	Entries     int
	Bytes       int64
	Elapsed     time.Duration
}

// Hasher computes origin fingerprints. A Hasher holds configuration only; each
// call owns its own hash context, so one Hasher may serve concurrent calls on
// distinct sources.
type Hasher struct {
	chunkSize      int
	followSymlinks bool
	logger         *slog.Logger
	progress       ProgressFunc
}

// Option customizes a Hasher.
type Option func(*Hasher)

// WithChunkSize sets the streaming read size. Non-positive values keep the default.
func WithChunkSize(n int) Option {
	return func(h *Hasher) {
		if n > 0 {
			h.chunkSize = n
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hasher) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(h *Hasher) { h.progress = fn }
}

// WithFollowSymlinks controls symlink handling for folder sources.
func WithFollowSymlinks(follow bool) Option {
	return func(h *Hasher) { h.followSymlinks = follow }
}

// New builds a Hasher.
func New(opts ...Option) *Hasher {
	h := &Hasher{
		chunkSize:      DefaultChunkSize,
		followSymlinks: true,
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FollowSymlinks reports whether folder sources list symlinked files.
func (h *Hasher) FollowSymlinks() bool { return h.followSymlinks }

// HashFolder fingerprints the directory tree at root.
func (h *Hasher) HashFolder(ctx context.Context, root string) (Result, error) {
	src, err := OpenFolder(root, WithSymlinks(h.followSymlinks), WithFolderLogger(h.logger))
	if err != nil {
		return Result{}, err
	}
	return h.HashSource(ctx, src)
}

// HashArchive fingerprints the file entries of the zip archive at path.
func (h *Hasher) HashArchive(ctx context.Context, path string) (Result, error) {
	src, err := OpenArchive(path)
	if err != nil {
		return Result{}, err
	}
	defer src.Close()
	return h.HashSource(ctx, src)
}

// HashSource lists, orders and streams every entry of src through one hash
// context. It does not close src.
func (h *Hasher) HashSource(ctx context.Context, src Source) (Result, error) {
	started := time.Now()
	entries, err := src.Entries(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(entries) == 0 {
		return Result{}, newSourceError("hash "+src.Kind(), src.Root(), "", ErrEmptySource, nil)
	}
	SortEntries(entries)

	s := h.newStream(ctx, src.Root(), totalSize(entries))
	logger := h.logger.With(slog.String("source", src.Root()), slog.String("kind", src.Kind()))
	logger.Debug("hashing source", slog.Int("entries", len(entries)), slog.Int64("bytes", s.total))

	var fp Fingerprint
	last := len(entries) - 1
	for i, entry := range entries {
		if err := s.hc.Update([]byte(entry.Key())); err != nil {
			return Result{}, err
		}
		s.entry = entry.Path()
		digest, err := s.consumeEntry(entry, i == last)
		if err != nil {
			return Result{}, err
		}
		if i == last {
			fp = digest
		}
	}

	res := Result{
		Fingerprint: fp,
		Entries:     len(entries),
		Bytes:       s.done,
		Elapsed:     time.Since(started),
	}
	logger.Debug("source hashed",
		slog.String("fingerprint", fp.String()),
		slog.Int("entries", res.Entries),
		slog.Int64("hashed_bytes", s.hc.Len()),
		slog.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

// HashFile returns the MD5 of the raw bytes of one file; no path is mixed in.
func (h *Hasher) HashFile(ctx context.Context, path string) (Result, error) {
	started := time.Now()
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, newSourceError("hash file", path, "", classify(err), err)
	}
	if info.IsDir() {
		return Result{}, newSourceError("hash file", path, "", ErrFormat, errors.New("is a directory"))
	}
	f, err := os.Open(path)
	if err != nil {
		return Result{}, newSourceError("hash file", path, "", classify(err), err)
	}
	defer f.Close()

	s := h.newStream(ctx, path, info.Size())
	fp, err := s.consume(f, true)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, newSourceError("hash file", path, "", readKind(err), err)
	}
	return Result{Fingerprint: fp, Entries: 1, Bytes: s.done, Elapsed: time.Since(started)}, nil
}

// HashFolder fingerprints a directory tree with default settings.
func HashFolder(root string) (Fingerprint, error) {
	res, err := New().HashFolder(context.Background(), root)
	return res.Fingerprint, err
}

// HashArchive fingerprints a zip archive with default settings.
func HashArchive(path string) (Fingerprint, error) {
	res, err := New().HashArchive(context.Background(), path)
	return res.Fingerprint, err
}

// HashFile hashes a single file's bytes with default settings.
func HashFile(path string) (Fingerprint, error) {
	res, err := New().HashFile(context.Background(), path)
	return res.Fingerprint, err
}

// stream carries the state of one run: the hash context, two read buffers
// used to look one chunk ahead, and progress counters.
type stream struct {
	ctx      context.Context
	hc       *HashContext
	bufs     [2][]byte
	root     string
	entry    string
	done     int64
	total    int64
	progress ProgressFunc
}

func (h *Hasher) newStream(ctx context.Context, root string, total int64) *stream {
	return &stream{
		ctx:      ctx,
		hc:       NewHashContext(),
		bufs:     [2][]byte{make([]byte, h.chunkSize), make([]byte, h.chunkSize)},
		root:     root,
		total:    total,
		progress: h.progress,
	}
}

func (s *stream) consumeEntry(entry Entry, final bool) (Fingerprint, error) {
	rc, err := entry.Open()
	if err != nil {
		return Fingerprint{}, newSourceError("open entry", s.root, entry.Path(), entryKind(err), err)
	}
	defer rc.Close()
	fp, err := s.consume(rc, final)
	if err != nil {
		if ctxErr := s.ctx.Err(); ctxErr != nil {
			return Fingerprint{}, ctxErr
		}
		return Fingerprint{}, newSourceError("read entry", s.root, entry.Path(), readKind(err), err)
	}
	return fp, nil
}

// consume feeds r into the context chunk by chunk. With final set, the last
// chunk read (possibly empty) becomes the finalizing block; otherwise every
// chunk is a plain update.
func (s *stream) consume(r io.Reader, final bool) (Fingerprint, error) {
	var pending []byte
	next := 0
	for {
		if err := s.ctx.Err(); err != nil {
			return Fingerprint{}, err
		}
		buf := s.bufs[next]
		n, err := io.ReadFull(r, buf)
		eof := errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
		if err != nil && !eof {
			return Fingerprint{}, err
		}
		if n > 0 {
			if pending != nil {
				if err := s.hc.Update(pending); err != nil {
					return Fingerprint{}, err
				}
			}
			pending = buf[:n]
			next ^= 1
			s.advance(int64(n))
		}
		if eof {
			break
		}
	}
	if final {
		return s.hc.Finalize(pending)
	}
	if pending != nil {
		if err := s.hc.Update(pending); err != nil {
			return Fingerprint{}, err
		}
	}
	return Fingerprint{}, nil
}

func (s *stream) advance(n int64) {
	s.done += n
	if s.progress != nil {
		s.progress(Progress{Root: s.root, Entry: s.entry, Done: s.done, Total: s.total})
	}
}

func totalSize(entries []Entry) int64 {
	var total int64
	for _, e := range entries {
		if e.Size() > 0 {
			total += e.Size()
		}
	}
	return total
}

// entryKind classifies a failure to open an entry that was already listed.
func entryKind(err error) error {
	if kind := classify(err); kind == ErrFormat {
		return kind
	}
	return ErrIO
}

// readKind classifies a failure while streaming content.
func readKind(err error) error {
	if errors.Is(err, ErrFinalized) {
		return ErrFinalized
	}
	return entryKind(err)
}
