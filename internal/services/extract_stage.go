package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/trackpipe/internal/checksum"
	"github.com/vvka-141/trackpipe/internal/extract"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// ArchiveFetcher downloads an archive into a directory and returns its path.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, rawURL, outputDir string) (string, error)
}

// ExtractStage downloads the archive, unpacks it and normalizes the artist records.
type ExtractStage struct {
	fetcher   ArchiveFetcher
	unpack    func(archive, outputDir string, logger trackpipe.Logger) (int, error)
	normalize func(dir string, logger trackpipe.Logger) (int, error)
	logger    trackpipe.Logger
	now       func() time.Time
}

// NewExtractStage creates an extract stage that downloads with fetcher.
// It panics if fetcher or logger is nil.
func NewExtractStage(fetcher ArchiveFetcher, logger trackpipe.Logger) *ExtractStage {
	if fetcher == nil {
		panic("fetcher cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ExtractStage{
		fetcher:   fetcher,
		unpack:    extract.Unpack,
		normalize: extract.Normalize,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes the stage. Any step failing aborts the rest and is returned.
func (s *ExtractStage) Run(ctx context.Context, config trackpipe.ExtractConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := s.run(ctx, config); err != nil {
		s.logger.Error("Error: %v", err)
		return err
	}
	return nil
}

func (s *ExtractStage) run(ctx context.Context, config trackpipe.ExtractConfig) error {
	start := s.now()
	s.logger.Info("Starting extraction engine ...")

	archive, err := s.fetcher.Fetch(ctx, config.ArchiveURL, config.OutputDir)
	if err != nil {
		return err
	}
	s.logger.Info("Downloaded zip: %s", archive)

	sum, err := checksum.File(archive)
	if err != nil {
		return fmt.Errorf("%w: %w", trackpipe.ErrDownloadFailed, err)
	}
	s.logger.Verbose("Archive sha256: %s", sum)
	if err := checksum.Verify(config.ArchiveSHA256, sum); err != nil {
		return fmt.Errorf("%w: %w", trackpipe.ErrDownloadFailed, err)
	}

	files, err := s.unpack(archive, config.OutputDir, s.logger)
	if err != nil {
		return err
	}
	s.logger.Verbose("Unpacked %d files", files)

	records, err := s.normalize(config.OutputDir, s.logger)
	if err != nil {
		return err
	}
	s.logger.Verbose("Normalized %d artist records", records)

	s.logger.Info("Extraction stage complete")
	s.logger.Info("Total time taken: %s", FormatElapsed(s.now().Sub(start)))
	return nil
}
