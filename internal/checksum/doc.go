// Package checksum computes and verifies SHA-256 digests of downloaded archives.
//
// # Example Usage
//
//	sum, err := checksum.File(archivePath)
//	if err != nil { ... }
//	if err := checksum.Verify(expected, sum); err != nil { ... }
//
// Expected digests are compared case-insensitively and may carry a
// "sha256:" prefix, as published by most release pipelines.
package checksum
