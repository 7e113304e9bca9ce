package engine

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcboeker/go-duckdb/v2"
)

// Options tunes the engine. Zero values keep DuckDB's defaults.
type Options struct {
	Threads     int
	MemoryLimit string // e.g. "4GB"
}

func (o Options) settings() []string {
	var stmts []string
	if o.Threads > 0 {
		stmts = append(stmts, fmt.Sprintf("SET threads = %d", o.Threads))
	}
	if o.MemoryLimit != "" {
		stmts = append(stmts, fmt.Sprintf("SET memory_limit = %s", quoteLiteral(o.MemoryLimit)))
	}
	return stmts
}

// Session is an open in-memory DuckDB database.
// Safe for concurrent use; DuckDB schedules its own worker threads.
type Session struct {
	connector *duckdb.Connector
	db        *sql.DB
}

// Open starts a session. The caller must Close it.
func Open(ctx context.Context, opts Options) (*Session, error) {
	settings := opts.settings()
	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		for _, stmt := range settings {
			if _, err := execer.ExecContext(context.Background(), stmt, nil); err != nil {
				return fmt.Errorf("%s: %w", stmt, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		connector.Close()
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &Session{connector: connector, db: db}, nil
}

// Exec runs a statement that returns no rows.
func (s *Session) Exec(ctx context.Context, query string, args ...any) error {
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// ReadParquet opens the dataset at path for reading.
//
// A directory is read as every *.parquet file beneath it, the part-file
// layout written by distributed engines. Marker files such as _SUCCESS and
// hidden checksum files are skipped. A missing path, or a directory with no
// parquet files, is an error.
func (s *Session) ReadParquet(ctx context.Context, path string) (*Frame, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		if files, err = partFiles(path); err != nil {
			return nil, fmt.Errorf("read parquet %s: %w", path, err)
		}
	}

	quoted := make([]string, len(files))
	for i, f := range files {
		quoted[i] = quoteLiteral(filepath.ToSlash(f))
	}
	query := fmt.Sprintf("SELECT * FROM read_parquet([%s], union_by_name = true, hive_partitioning = false)", strings.Join(quoted, ", "))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return newFrame(rows)
}

// partFiles lists the parquet files under dir in lexical order.
func partFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if p != dir && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(name, ".parquet") && !strings.HasPrefix(name, ".") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no parquet files found")
	}
	return files, nil
}

// Close releases the database. Frames must be closed first.
func (s *Session) Close() error {
	return errors.Join(s.db.Close(), s.connector.Close())
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
