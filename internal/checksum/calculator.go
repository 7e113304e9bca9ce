package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrMismatch is returned by Verify when the digests differ.
var ErrMismatch = errors.New("checksum mismatch")

// Reader returns the hex SHA-256 of everything read from r.
func Reader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File returns the hex SHA-256 of the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return Reader(f)
}

// Verify compares an expected digest against an actual hex digest.
// An empty expected digest always verifies.
func Verify(expected, actual string) error {
	want := strings.ToLower(strings.TrimSpace(expected))
	want = strings.TrimPrefix(want, "sha256:")
	if want == "" {
		return nil
	}
	if len(want) != sha256.Size*2 {
		return fmt.Errorf("expected sha256 %q is not %d hex characters: %w", expected, sha256.Size*2, ErrMismatch)
	}
	if want != strings.ToLower(actual) {
		return fmt.Errorf("expected sha256 %s, got %s: %w", want, actual, ErrMismatch)
	}
	return nil
}
