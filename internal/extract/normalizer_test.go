package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/trackpipe/internal/logging"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

func TestNormalize_StreamPreservesOrder(t *testing.T) {
	in := `{
  "zz9": ["a1", "a2"],
  "aa1": [],
  "mm5": ["Beyoncé", "<b>&"]
}`
	var out bytes.Buffer
	n, err := normalize(strings.NewReader(in), &out)
	require.NoError(t, err)

	assert.Equal(t, 3, n)
	assert.Equal(t,
		`{"id":"zz9","related_ids":["a1","a2"]}`+"\n"+
			`{"id":"aa1","related_ids":[]}`+"\n"+
			`{"id":"mm5","related_ids":["Beyoncé","<b>&"]}`+"\n",
		out.String())
}

func TestNormalize_EmptyObject(t *testing.T) {
	var out bytes.Buffer
	n, err := normalize(strings.NewReader(`{}`), &out)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, out.String())
}

func TestNormalize_Rejects(t *testing.T) {
	for name, in := range map[string]string{
		"array":     `[1, 2]`,
		"truncated": `{"a": ["b"`,
		"empty":     ``,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := normalize(strings.NewReader(in), &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}

func TestNormalize_Files(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, trackpipe.RawArtistsFile)
	require.NoError(t, os.WriteFile(source, []byte(`{"a1": ["a2", "a3"], "a2": ["a1"]}`), 0o644))

	n, err := Normalize(dir, logging.NewNullLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(filepath.Join(dir, trackpipe.NormalizedArtistsFile))
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":\"a1\",\"related_ids\":[\"a2\",\"a3\"]}\n{\"id\":\"a2\",\"related_ids\":[\"a1\"]}\n", string(data))
	assert.NoFileExists(t, source)
}

func TestNormalize_MissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := Normalize(dir, logging.NewNullLogger())

	assert.ErrorIs(t, err, trackpipe.ErrExtractFailed)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, filepath.Join(dir, trackpipe.NormalizedArtistsFile))
}
