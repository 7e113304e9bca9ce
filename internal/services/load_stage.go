package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// Provisioner creates the destination tables.
type Provisioner interface {
	Provision(ctx context.Context, target *trackpipe.ConnectionConfig) error
}

// TableLoader attempts every load unit under an input root.
type TableLoader interface {
	Run(ctx context.Context, inputDir string) []trackpipe.LoadResult
}

// LoadStage runs one load-stage batch: provision, then load every table.
//
// Only configuration problems and a missing input directory are returned as
// errors. Provisioning and per-table failures are logged and recorded in the
// report; the stage itself still succeeds.
type LoadStage struct {
	provisioner Provisioner
	loader      TableLoader
	logger      trackpipe.Logger
	now         func() time.Time
}

// NewLoadStage panics on nil dependencies.
func NewLoadStage(provisioner Provisioner, loader TableLoader, logger trackpipe.Logger) *LoadStage {
	if provisioner == nil {
		panic("provisioner cannot be nil")
	}
	if loader == nil {
		panic("loader cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &LoadStage{
		provisioner: provisioner,
		loader:      loader,
		logger:      logger,
		now:         time.Now,
	}
}

// Run executes the stage. The returned report is non-nil whenever err is nil.
func (s *LoadStage) Run(ctx context.Context, config trackpipe.LoadConfig) (*trackpipe.LoadReport, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := CheckInputDir(config.InputDir); err != nil {
		s.logger.Error("Error: Input directory %s does not exist", config.InputDir)
		return nil, err
	}

	report := trackpipe.NewLoadReport(s.now())
	if config.RunID != uuid.Nil {
		report.RunID = config.RunID
	}
	s.logger.Info("Load stage started")
	s.logger.Verbose("Run %s: loading %s into %s/%s", report.RunID, config.InputDir, config.Connection.Address(), config.Connection.Database)

	target := config.Connection
	if err := s.provisioner.Provision(ctx, &target); err != nil {
		report.Provisioning = err
		s.logger.Warn("Error creating tables: %v", err)
	} else {
		s.logger.Info("PostgreSQL tables created successfully")
	}

	report.Results = s.loader.Run(ctx, config.InputDir)
	report.Finished = s.now()

	s.logger.Info("Load stage complete")
	s.logger.Info("Total time taken: %s", FormatElapsed(report.Elapsed()))
	return report, nil
}

// CheckInputDir reports ErrInputNotFound unless path is an existing directory.
func CheckInputDir(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("input directory %s does not exist: %w", path, trackpipe.ErrInputNotFound)
	}
	if err != nil {
		return fmt.Errorf("input directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input path %s is not a directory: %w", path, trackpipe.ErrInputNotFound)
	}
	return nil
}

// FormatElapsed renders a stage duration as hours, minutes and seconds.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Millisecond)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%d hours, %d minutes, %.3f seconds", h, m, d.Seconds())
}
