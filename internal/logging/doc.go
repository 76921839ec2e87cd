// Package logging assembles the structured slog loggers used by originhash.
//
// It owns the console and JSON handlers, level and output plumbing, the
// standard field keys (component, source, entry, kind, run_id), and a
// progress sampler that keeps per-chunk progress from flooding debug output.
// Logs default to stderr so fingerprints printed on stdout stay pipeable.
package logging
