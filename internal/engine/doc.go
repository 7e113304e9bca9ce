// Package engine is the columnar compute session used by the load stage.
//
// A Session wraps one in-process DuckDB database, opened once per run and
// closed at process end. ReadParquet turns a staged dataset (a directory of
// part files or a single parquet file) into a Frame: the column names plus a
// forward-only row iterator that a bulk writer can stream from.
package engine
