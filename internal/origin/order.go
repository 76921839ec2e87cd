package origin

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CanonicalKey returns the form of a relative path that is both compared and
// hashed: separators normalized to '/' and the whole path lowercased with the
// locale-neutral Unicode mapping.
func CanonicalKey(path string) string {
	// Casers keep per-call state, so one is built per key.
	return cases.Lower(language.Und).String(normalizeSeparators(path))
}

// Compare orders two relative paths by the byte values of their canonical
// keys, so digits sort before '_' and '_' before letters. Paths whose keys are
// equal fall back to their raw bytes, which keeps the order total.
func Compare(a, b string) int {
	if c := strings.Compare(CanonicalKey(a), CanonicalKey(b)); c != 0 {
		return c
	}
	return strings.Compare(normalizeSeparators(a), normalizeSeparators(b))
}

// SortEntries orders entries canonically in place.
func SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, compareEntries)
}

func compareEntries(a, b Entry) int {
	if c := strings.Compare(a.key, b.key); c != 0 {
		return c
	}
	return strings.Compare(a.path, b.path)
}

func normalizeSeparators(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}
