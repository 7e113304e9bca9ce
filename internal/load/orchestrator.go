package load

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// Orchestrator loads every unit of a manifest, one after another.
// A failing unit is logged and recorded; the remaining units still run.
type Orchestrator struct {
	reader   Reader
	writer   Writer
	manifest []trackpipe.LoadUnit
	logger   trackpipe.Logger
	now      func() time.Time
}

// NewOrchestrator creates an orchestrator that walks manifest in order,
// reading each source with reader and storing it with writer.
func NewOrchestrator(reader Reader, writer Writer, manifest []trackpipe.LoadUnit, logger trackpipe.Logger) *Orchestrator {
	return &Orchestrator{
		reader:   reader,
		writer:   writer,
		manifest: manifest,
		logger:   logger,
		now:      time.Now,
	}
}

// Run attempts each unit exactly once, in manifest order, reading sources
// relative to inputDir. It returns one result per unit.
func (o *Orchestrator) Run(ctx context.Context, inputDir string) []trackpipe.LoadResult {
	results := make([]trackpipe.LoadResult, 0, len(o.manifest))
	for _, unit := range o.manifest {
		result := o.loadUnit(ctx, inputDir, unit)
		if result.Err != nil {
			o.logger.Warn("Error loading %s : %v", unit.Table, result.Err)
		} else {
			o.logger.Info("Loaded %d rows into %s (%s)", result.Rows, unit.Table, unit.Mode)
		}
		results = append(results, result)
	}
	return results
}

func (o *Orchestrator) loadUnit(ctx context.Context, inputDir string, unit trackpipe.LoadUnit) (result trackpipe.LoadResult) {
	result.Unit = unit
	start := o.now()
	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("panic: %v", r)
		}
		result.Duration = o.now().Sub(start)
		if result.Err != nil {
			result.Err = fmt.Errorf("%w: %w", trackpipe.ErrLoadFailed, result.Err)
		}
	}()

	source := filepath.Join(inputDir, filepath.FromSlash(unit.Source))
	o.logger.Verbose("Reading %s for %s", source, unit.Table)

	frame, err := o.reader.Read(ctx, source)
	if err != nil {
		result.Err = err
		return result
	}
	defer frame.Close()

	result.Rows, result.Err = o.writer.Write(ctx, unit.Table, unit.Mode, frame)
	return result
}
