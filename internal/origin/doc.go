// Package origin computes content-only fingerprints ("origin hashes") for file
// sets stored either in a directory tree or inside a zip archive.
//
// Two sources holding the same relative paths with the same bytes produce the
// same fingerprint regardless of container metadata such as timestamps,
// permissions, compression method, or physical entry order.
//
// The algorithm:
//   - list every non-directory entry of the source
//   - order entries by their lowercased relative path, compared byte-wise
//   - feed one MD5 context with the lowercased path bytes followed by the
//     content bytes of each entry, finalizing on the last chunk of the last
//     entry
//   - render the 16-byte digest as uppercase hexadecimal
//
// Primary entry points:
//   - HashFolder: fingerprint a directory tree
//   - HashArchive: fingerprint the entries of a zip archive
//   - HashFile: plain MD5 of a single file's bytes
//   - Hasher: configurable variant (chunk size, logging, progress, h1 scheme)
//
// The package has no dependencies on the rest of the module and reports
// failures through the ErrNotFound, ErrFormat, ErrIO and ErrEmptySource
// sentinels, matched with errors.Is.
package origin
