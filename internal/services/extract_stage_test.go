package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/trackpipe/internal/checksum"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// sha256("abc")
const abcSum = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

type extractCalls struct {
	unpacked, normalized string
}

func newTestExtractStage(fetcher *mockFetcher, logger *captureLogger, calls *extractCalls, unpackErr, normalizeErr error) *ExtractStage {
	stage := NewExtractStage(fetcher, logger)
	stage.unpack = func(archive, _ string, _ trackpipe.Logger) (int, error) {
		calls.unpacked = archive
		return 3, unpackErr
	}
	stage.normalize = func(dir string, _ trackpipe.Logger) (int, error) {
		calls.normalized = dir
		return 42, normalizeErr
	}
	return stage
}

func TestNewExtractStage_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewExtractStage(nil, &captureLogger{}) })
	assert.Panics(t, func() { NewExtractStage(&mockFetcher{}, nil) })
}

func TestExtractStage_Success(t *testing.T) {
	out := t.TempDir()
	fetcher := &mockFetcher{body: []byte("abc")}
	logger := &captureLogger{}
	calls := &extractCalls{}

	err := newTestExtractStage(fetcher, logger, calls, nil, nil).Run(context.Background(), trackpipe.ExtractConfig{
		OutputDir:     out,
		ArchiveURL:    "https://example.com/data.zip",
		ArchiveSHA256: "sha256:" + abcSum,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/data.zip", fetcher.url)
	assert.Equal(t, fetcher.archive, calls.unpacked)
	assert.Equal(t, out, calls.normalized)
	assert.True(t, logger.has("INFO Starting extraction engine ..."))
	assert.True(t, logger.has("INFO Downloaded zip: "+fetcher.archive))
	assert.True(t, logger.has("VERBOSE Archive sha256: "+abcSum))
	assert.True(t, logger.has("INFO Extraction stage complete"))
}

func TestExtractStage_ChecksumMismatch(t *testing.T) {
	calls := &extractCalls{}
	logger := &captureLogger{}
	err := newTestExtractStage(&mockFetcher{body: []byte("not abc")}, logger, calls, nil, nil).
		Run(context.Background(), trackpipe.ExtractConfig{OutputDir: t.TempDir(), ArchiveURL: "https://x/y.zip", ArchiveSHA256: abcSum})

	assert.ErrorIs(t, err, checksum.ErrMismatch)
	assert.Equal(t, trackpipe.ExitDownloadFailed, trackpipe.ExitCodeForError(err))
	assert.Empty(t, calls.unpacked)
}

func TestExtractStage_StopsAtFirstFailure(t *testing.T) {
	downloadErr := errors.New("failed to download file. status code: 404")

	t.Run("fetch", func(t *testing.T) {
		logger := &captureLogger{}
		calls := &extractCalls{}
		err := newTestExtractStage(&mockFetcher{err: downloadErr}, logger, calls, nil, nil).
			Run(context.Background(), trackpipe.ExtractConfig{OutputDir: t.TempDir(), ArchiveURL: "https://x/y.zip"})

		assert.ErrorIs(t, err, downloadErr)
		assert.Empty(t, calls.unpacked)
		assert.True(t, logger.has("ERROR Error: failed to download file. status code: 404"))
		assert.False(t, logger.has("INFO Extraction stage complete"))
	})

	t.Run("unpack", func(t *testing.T) {
		calls := &extractCalls{}
		err := newTestExtractStage(&mockFetcher{body: []byte("zip")}, &captureLogger{}, calls, trackpipe.ErrExtractFailed, nil).
			Run(context.Background(), trackpipe.ExtractConfig{OutputDir: t.TempDir(), ArchiveURL: "https://x/y.zip"})

		assert.ErrorIs(t, err, trackpipe.ErrExtractFailed)
		assert.Empty(t, calls.normalized)
	})
}

func TestExtractStage_InvalidConfig(t *testing.T) {
	fetcher := &mockFetcher{}
	err := NewExtractStage(fetcher, &captureLogger{}).Run(context.Background(), trackpipe.ExtractConfig{OutputDir: t.TempDir()})

	assert.ErrorIs(t, err, trackpipe.ErrInvalidConfig)
	assert.Empty(t, fetcher.url)
}
