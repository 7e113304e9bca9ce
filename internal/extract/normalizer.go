package extract

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// artistRecord is one line of the normalized output.
type artistRecord struct {
	ID         string `json:"id"`
	RelatedIDs any    `json:"related_ids"`
}

// Normalize rewrites <dir>/dict_artists.json, a single object mapping artist
// id to its related ids, as <dir>/fixed_da.json with one
// {"id": ..., "related_ids": ...} record per line in source order.
// The source file is deleted afterwards. It returns the record count.
func Normalize(dir string, logger trackpipe.Logger) (int, error) {
	source := filepath.Join(dir, trackpipe.RawArtistsFile)
	target := filepath.Join(dir, trackpipe.NormalizedArtistsFile)

	n, err := normalizeFile(source, target)
	if err != nil {
		return n, fmt.Errorf("%w: normalize %s: %w", trackpipe.ErrExtractFailed, source, err)
	}
	logger.Info("File %s has been fixed and written to %s as %s", source, dir, trackpipe.NormalizedArtistsFile)

	logger.Info("Removing the original file")
	if err := os.Remove(source); err != nil {
		return n, fmt.Errorf("%w: %w", trackpipe.ErrExtractFailed, err)
	}
	return n, nil
}

func normalizeFile(source, target string) (int, error) {
	in, err := os.Open(source)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	tmp := target + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp)

	w := bufio.NewWriter(out)
	n, err := normalize(bufio.NewReader(in), w)
	if err == nil {
		err = w.Flush()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, err
	}
	return n, os.Rename(tmp, target)
}

// normalize streams the top-level object of r into JSON lines on w.
func normalize(r io.Reader, w io.Writer) (int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return 0, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return 0, fmt.Errorf("expected a JSON object, found %v", tok)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	n := 0
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return n, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return n, fmt.Errorf("expected an object key, found %v", keyTok)
		}

		var related any
		if err := dec.Decode(&related); err != nil {
			return n, fmt.Errorf("value of %q: %w", key, err)
		}
		if err := enc.Encode(artistRecord{ID: key, RelatedIDs: related}); err != nil {
			return n, err
		}
		n++
	}

	if _, err := dec.Token(); err != nil {
		return n, err
	}
	return n, nil
}
