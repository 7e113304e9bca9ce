package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// Unpack extracts every entry of archive into outputDir and then deletes
// the archive. Entries that would land outside outputDir are rejected.
// It returns the number of files written.
func Unpack(archive, outputDir string, logger trackpipe.Logger) (int, error) {
	n, err := unpack(archive, outputDir)
	if err != nil {
		return n, fmt.Errorf("%w: unpack %s: %w", trackpipe.ErrExtractFailed, archive, err)
	}
	logger.Info("Extracted files written to: %s", outputDir)

	logger.Info("Removing the zip file")
	if err := os.Remove(archive); err != nil {
		return n, fmt.Errorf("%w: %w", trackpipe.ErrExtractFailed, err)
	}
	return n, nil
}

func unpack(archive, outputDir string) (int, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	root, err := filepath.Abs(outputDir)
	if err != nil {
		return 0, err
	}

	files := 0
	for _, entry := range r.File {
		target, err := entryPath(root, entry.Name)
		if err != nil {
			return files, err
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return files, err
			}
			continue
		}
		if err := writeEntry(entry, target); err != nil {
			return files, fmt.Errorf("%s: %w", entry.Name, err)
		}
		files++
	}
	return files, nil
}

func entryPath(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
		return "", fmt.Errorf("illegal file path in archive: %s", name)
	}
	return target, nil
}

func writeEntry(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
