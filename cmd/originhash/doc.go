// Package main hosts the originhash CLI.
//
// The Cobra command tree resolves configuration and logging once per run,
// turns arguments into batch requests, and renders results as text, tables
// or JSON. Failures map to distinct exit codes: 2 usage, 3 not found,
// 4 malformed source, 5 I/O, 6 empty source.
package main
