package origin

import (
	"crypto/md5"
	"encoding/hex"
	"hash"
	"strings"
)

// Fingerprint is a 128-bit origin digest.
type Fingerprint [md5.Size]byte

// String renders the digest as uppercase hexadecimal without separators.
func (f Fingerprint) String() string {
	return strings.ToUpper(hex.EncodeToString(f[:]))
}

// MarshalText implements encoding.TextMarshaler.
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseFingerprint decodes a 32-character hexadecimal digest in either case.
func ParseFingerprint(s string) (Fingerprint, error) {
	var f Fingerprint
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return f, err
	}
	if len(raw) != len(f) {
		return f, hex.ErrLength
	}
	copy(f[:], raw)
	return f, nil
}

type contextState int

const (
	stateIdle contextState = iota
	stateAccumulating
	stateFinalized
)

func (s contextState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAccumulating:
		return "accumulating"
	case stateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// HashContext is an incremental MD5 accumulator with explicit final-block
// control: any number of Update calls followed by exactly one Finalize.
// It is not safe for concurrent use.
type HashContext struct {
	h     hash.Hash
	state contextState
	total int64
}

// NewHashContext returns an idle accumulator.
func NewHashContext() *HashContext {
	return &HashContext{h: md5.New()}
}

// Update feeds p as a non-final block.
func (c *HashContext) Update(p []byte) error {
	if c.state == stateFinalized {
		return ErrFinalized
	}
	c.state = stateAccumulating
	// hash.Hash.Write never returns an error.
	_, _ = c.h.Write(p)
	c.total += int64(len(p))
	return nil
}

// Finalize feeds p as the closing block and returns the digest. p may be empty.
func (c *HashContext) Finalize(p []byte) (Fingerprint, error) {
	var f Fingerprint
	if c.state == stateFinalized {
		return f, ErrFinalized
	}
	_, _ = c.h.Write(p)
	c.total += int64(len(p))
	c.state = stateFinalized
	copy(f[:], c.h.Sum(nil))
	return f, nil
}

// Finalized reports whether Finalize has been called.
func (c *HashContext) Finalized() bool { return c.state == stateFinalized }

// Len returns the number of bytes fed so far.
func (c *HashContext) Len() int64 { return c.total }
