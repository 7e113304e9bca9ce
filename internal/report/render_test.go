package report

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

func sampleReport() *trackpipe.LoadReport {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &trackpipe.LoadReport{
		RunID:    uuid.MustParse("5f1c2f43-8c3e-4c7a-9a55-3a0e6f0e7b21"),
		Started:  start,
		Finished: start.Add(4500 * time.Millisecond),
		Results: []trackpipe.LoadResult{
			{Unit: trackpipe.LoadUnit{Table: "master_table", Mode: trackpipe.WriteModeAppend}, Rows: 120, Duration: 1200 * time.Millisecond},
			{Unit: trackpipe.LoadUnit{Table: "artist_metadata", Mode: trackpipe.WriteModeOverwrite}, Err: errors.New("load failed: no parquet files found")},
		},
	}
}

func TestFormat_Plain(t *testing.T) {
	out := Format(sampleReport(), false)

	assert.True(t, strings.HasPrefix(out, "Load report run 5f1c2f43-8c3e-4c7a-9a55-3a0e6f0e7b21\n"))
	assert.Contains(t, out, "  ✓ master_table               append      120 rows in 1.2s\n")
	assert.Contains(t, out, "  ✗ artist_metadata            overwrite   load failed: no parquet files found\n")
	assert.Contains(t, out, "1 of 2 tables loaded, 120 rows, 4.5s\n")
	assert.NotContains(t, out, "provisioning")
	assert.NotContains(t, out, "\x1b[")
}

func TestFormat_ProvisioningFailure(t *testing.T) {
	r := sampleReport()
	r.Provisioning = errors.New("password authentication failed")

	assert.Contains(t, Format(r, false), "• provisioning failed: password authentication failed")
}

func TestFormat_NoResults(t *testing.T) {
	r := &trackpipe.LoadReport{RunID: uuid.New()}
	assert.Contains(t, Format(r, false), "0 of 0 tables loaded, 0 rows, 0s")
}

func TestRender_WritesFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), false))
	assert.Equal(t, Format(sampleReport(), false), buf.String())
}

func TestUseColor(t *testing.T) {
	t.Setenv("TRACKPIPE_PLAIN", "")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")

	assert.False(t, UseColor(&bytes.Buffer{}), "non-file writers are never styled")
	assert.False(t, UseColor(os.Stdout), "test stdout is not a terminal")

	t.Setenv("NO_COLOR", "1")
	assert.False(t, UseColor(os.Stderr))
}

func TestUseColor_PlainOverride(t *testing.T) {
	t.Setenv("TRACKPIPE_PLAIN", "1")
	assert.False(t, UseColor(os.Stdout))
}
