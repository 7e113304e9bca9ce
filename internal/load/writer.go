package load

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/trackpipe/internal/db"
	"github.com/vvka-141/trackpipe/internal/schema"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// Writer stores a frame in a destination table.
type Writer interface {
	Write(ctx context.Context, table string, mode trackpipe.WriteMode, frame Frame) (int64, error)
}

// BulkWriter copies frames into PostgreSQL with COPY FROM.
//
// Every Write opens its own pool on the shared target and runs in one
// transaction: append copies rows in, overwrite truncates first. A failed
// write rolls back, leaving the table as it was. Table definitions and
// keys are never touched.
type BulkWriter struct {
	connectorFactory trackpipe.ConnectorFactory
	target           *trackpipe.ConnectionConfig
	logger           trackpipe.Logger
}

// NewBulkWriter creates a writer that connects to target through
// connectorFactory for every write.
func NewBulkWriter(connectorFactory trackpipe.ConnectorFactory, target *trackpipe.ConnectionConfig, logger trackpipe.Logger) *BulkWriter {
	return &BulkWriter{
		connectorFactory: connectorFactory,
		target:           target,
		logger:           logger,
	}
}

// Write copies every row of frame into table and returns the row count.
// Frame columns the table does not declare fail the write before it
// connects.
func (w *BulkWriter) Write(ctx context.Context, table string, mode trackpipe.WriteMode, frame Frame) (int64, error) {
	if mode != trackpipe.WriteModeAppend && mode != trackpipe.WriteModeOverwrite {
		return 0, fmt.Errorf("write mode %v: %w", mode, trackpipe.ErrInvalidConfig)
	}
	if err := checkColumns(table, frame.Columns()); err != nil {
		return 0, err
	}

	connector, err := w.connectorFactory(w.target)
	if err != nil {
		return 0, err
	}
	pool, err := connector.Connect(ctx)
	defer db.Release(connector, pool)
	if err != nil {
		return 0, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if mode == trackpipe.WriteModeOverwrite {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+pgx.Identifier{table}.Sanitize()); err != nil {
			return 0, fmt.Errorf("truncate %s: %w", table, err)
		}
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, frame.Columns(), &copySource{frame: frame})
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit %s: %w", table, err)
	}
	w.logger.Verbose("Wrote %d rows to %s (%s)", n, table, mode)
	return n, nil
}

// checkColumns rejects columns missing from the declared table. Tables
// without a declaration are left for the server to judge.
func checkColumns(table string, columns []string) error {
	def, ok := schema.Lookup(table)
	if !ok {
		return nil
	}
	declared := def.ColumnNames()
	var unknown []string
	for _, c := range columns {
		if !slices.Contains(declared, c) {
			unknown = append(unknown, c)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("table %s has no column %s", table, strings.Join(unknown, ", "))
	}
	return nil
}

// copySource feeds frame rows to COPY, converting list values for array columns.
type copySource struct {
	frame Frame
	row   []any
	err   error
}

func (s *copySource) Next() bool {
	if !s.frame.Next() {
		return false
	}
	values, err := s.frame.Values()
	if err != nil {
		s.err = err
		return false
	}
	for i, v := range values {
		if list, ok := v.([]any); ok {
			values[i] = textArray(list)
		}
	}
	s.row = values
	return true
}

func (s *copySource) Values() ([]any, error) {
	return s.row, s.err
}

func (s *copySource) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.frame.Err()
}

// textArray renders a list value for a TEXT[] column. Null elements stay null.
func textArray(list []any) []*string {
	out := make([]*string, len(list))
	for i, v := range list {
		switch x := v.(type) {
		case nil:
		case string:
			out[i] = &x
		default:
			s := fmt.Sprint(x)
			out[i] = &s
		}
	}
	return out
}
