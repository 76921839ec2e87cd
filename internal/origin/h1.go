package origin

import (
	"context"
	"io"

	"golang.org/x/mod/sumdb/dirhash"
)

// HashSourceH1 computes the Go module "h1:" directory hash over the same
// entry set HashSource would use. Paths enter that hash case-preserved, so it
// is stricter than the origin fingerprint; it exists for comparing a source
// against tooling that speaks the module checksum format.
func (h *Hasher) HashSourceH1(ctx context.Context, src Source) (string, int, error) {
	entries, err := src.Entries(ctx)
	if err != nil {
		return "", 0, err
	}
	if len(entries) == 0 {
		return "", 0, newSourceError("hash "+src.Kind(), src.Root(), "", ErrEmptySource, nil)
	}
	byPath := make(map[string]Entry, len(entries))
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		byPath[e.Path()] = e
		files = append(files, e.Path())
	}
	sum, err := dirhash.Hash1(files, func(name string) (io.ReadCloser, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return byPath[name].Open()
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", 0, ctxErr
		}
		return "", 0, newSourceError("hash "+src.Kind(), src.Root(), "", readKind(err), err)
	}
	return sum, len(entries), nil
}
