package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTables_DeclarationOrder(t *testing.T) {
	var names []string
	for _, tbl := range Tables {
		names = append(names, tbl.Name)
	}
	assert.Equal(t, []string{
		"master_table",
		"recommendations_exploded",
		"artist_track",
		"track_metadata",
		"artist_metadata",
	}, names)
}

func TestTables_PrimaryKeys(t *testing.T) {
	keys := map[string][]string{}
	for _, tbl := range Tables {
		for _, c := range tbl.Columns {
			if c.PrimaryKey {
				keys[tbl.Name] = append(keys[tbl.Name], c.Name)
			}
		}
	}
	assert.Equal(t, map[string][]string{
		TrackMetadata:  {"id"},
		ArtistMetadata: {"id"},
	}, keys)
}

func TestTable_CreateSQL(t *testing.T) {
	tbl, ok := Lookup(ArtistMetadata)
	require.True(t, ok)

	stmt, err := tbl.CreateSQL()
	require.NoError(t, err)
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "artist_metadata" (
    "id" VARCHAR(50) PRIMARY KEY,
    "name" TEXT,
    "followers" FLOAT,
    "popularity" INTEGER
)`, stmt)
}

func TestTable_CreateSQL_MasterTableArray(t *testing.T) {
	tbl, ok := Lookup(MasterTable)
	require.True(t, ok)

	stmt, err := tbl.CreateSQL()
	require.NoError(t, err)
	assert.Contains(t, stmt, `"related_ids" TEXT[]`)
	assert.NotContains(t, stmt, "PRIMARY KEY")
	assert.Len(t, tbl.ColumnNames(), 12)
}

func TestTable_CreateSQL_Invalid(t *testing.T) {
	_, err := Table{}.CreateSQL()
	assert.Error(t, err)

	_, err = Table{Name: "empty"}.CreateSQL()
	assert.ErrorContains(t, err, "has no columns")
}

func TestLookup_Unknown(t *testing.T) {
	_, ok := Lookup("playlists")
	assert.False(t, ok)
}
