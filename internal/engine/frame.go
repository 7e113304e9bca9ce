package engine

import (
	"database/sql"
	"fmt"
)

// Frame is a forward-only view over the rows of a dataset.
// Not safe for concurrent use.
type Frame struct {
	rows    *sql.Rows
	columns []string
	current []any
	err     error
}

func newFrame(rows *sql.Rows) (*Frame, error) {
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("read columns: %w", err)
	}
	return &Frame{rows: rows, columns: columns}, nil
}

// Columns returns the dataset's column names in file order.
func (f *Frame) Columns() []string {
	return f.columns
}

// Next advances to the next row. It returns false at the end of the data
// or on error; check Err afterwards.
func (f *Frame) Next() bool {
	if f.err != nil || !f.rows.Next() {
		return false
	}

	values := make([]any, len(f.columns))
	ptrs := make([]any, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := f.rows.Scan(ptrs...); err != nil {
		f.err = fmt.Errorf("scan row: %w", err)
		return false
	}
	f.current = values
	return true
}

// Values returns the current row. LIST columns come back as []any.
func (f *Frame) Values() ([]any, error) {
	return f.current, f.err
}

// Err reports the first error met while iterating or decoding rows.
func (f *Frame) Err() error {
	if f.err != nil {
		return f.err
	}
	return f.rows.Err()
}

// Close releases the underlying result set.
func (f *Frame) Close() error {
	return f.rows.Close()
}
