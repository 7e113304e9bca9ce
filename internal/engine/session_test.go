package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSession(t *testing.T) *Session {
	t.Helper()
	s, err := Open(context.Background(), Options{Threads: 2, MemoryLimit: "512MB"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// writeParquet materialises query as a parquet file at path.
func writeParquet(t *testing.T, s *Session, query, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, s.Exec(context.Background(),
		"COPY ("+query+") TO "+quoteLiteral(filepath.ToSlash(path))+" (FORMAT PARQUET)"))
}

func readAll(t *testing.T, f *Frame) [][]any {
	t.Helper()
	defer f.Close()

	var out [][]any
	for f.Next() {
		v, err := f.Values()
		require.NoError(t, err)
		out = append(out, v)
	}
	require.NoError(t, f.Err())
	return out
}

func TestReadParquet_SingleFile(t *testing.T) {
	s := openSession(t)
	path := filepath.Join(t.TempDir(), "artist_metadata.parquet")
	writeParquet(t, s, `SELECT * FROM (VALUES ('a1', 'Björk', 1500.0::DOUBLE, 71::INTEGER), ('a2', 'Low', 20.5::DOUBLE, 40::INTEGER)) t(id, name, followers, popularity) ORDER BY id`, path)

	f, err := s.ReadParquet(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "followers", "popularity"}, f.Columns())

	rows := readAll(t, f)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"a1", "Björk", 1500.0, int32(71)}, rows[0])
	assert.Equal(t, "a2", rows[1][0])
}

func TestReadParquet_PartDirectory(t *testing.T) {
	s := openSession(t)
	dir := filepath.Join(t.TempDir(), "stage3", "artist_track")
	writeParquet(t, s, `SELECT 't1' AS id, 'a1' AS artists_id`, filepath.Join(dir, "part-00000.parquet"))
	writeParquet(t, s, `SELECT 't2' AS id, 'a2' AS artists_id`, filepath.Join(dir, "part-00001.parquet"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_SUCCESS"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".part-00000.parquet.crc"), []byte("x"), 0o644))

	f, err := s.ReadParquet(context.Background(), dir)
	require.NoError(t, err)

	rows := readAll(t, f)
	assert.Len(t, rows, 2)
}

func TestReadParquet_KeyValueSegmentInRoot(t *testing.T) {
	s := openSession(t)
	dir := filepath.Join(t.TempDir(), "dt=2024-07-10", "stage3", "artist_track")
	writeParquet(t, s, `SELECT 't1' AS id, 'a1' AS artists_id`, filepath.Join(dir, "part-00000.parquet"))

	f, err := s.ReadParquet(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "artists_id"}, f.Columns())
	assert.Equal(t, [][]any{{"t1", "a1"}}, readAll(t, f))
}

func TestReadParquet_ListColumn(t *testing.T) {
	s := openSession(t)
	path := filepath.Join(t.TempDir(), "master.parquet")
	writeParquet(t, s, `SELECT 't1' AS track_id, ['r1', 'r2'] AS related_ids`, path)

	f, err := s.ReadParquet(context.Background(), path)
	require.NoError(t, err)

	rows := readAll(t, f)
	require.Len(t, rows, 1)
	assert.Equal(t, []any{"r1", "r2"}, rows[0][1])
}

func TestReadParquet_MissingPath(t *testing.T) {
	s := openSession(t)

	_, err := s.ReadParquet(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadParquet_EmptyDirectory(t *testing.T) {
	s := openSession(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_SUCCESS"), nil, 0o644))

	_, err := s.ReadParquet(context.Background(), dir)
	assert.ErrorContains(t, err, "no parquet files found")
}

func TestReadParquet_CorruptFile(t *testing.T) {
	s := openSession(t)
	path := filepath.Join(t.TempDir(), "broken.parquet")
	require.NoError(t, os.WriteFile(path, []byte("not parquet at all"), 0o644))

	f, err := s.ReadParquet(context.Background(), path)
	if err == nil {
		readErr := func() error {
			defer f.Close()
			for f.Next() {
			}
			return f.Err()
		}()
		err = readErr
	}
	assert.Error(t, err)
}

func TestOptions_Settings(t *testing.T) {
	assert.Empty(t, Options{}.settings())
	assert.Equal(t, []string{"SET threads = 4", "SET memory_limit = '2GB'"},
		Options{Threads: 4, MemoryLimit: "2GB"}.settings())
}
