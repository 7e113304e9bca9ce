// Package schema declares the five destination tables and provisions them.
package schema

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Column is one column of a destination table.
type Column struct {
	Name       string
	Type       string
	PrimaryKey bool
}

// Table is a destination table definition.
type Table struct {
	Name    string
	Columns []Column
}

// Destination table names.
const (
	MasterTable             = "master_table"
	RecommendationsExploded = "recommendations_exploded"
	ArtistTrack             = "artist_track"
	TrackMetadata           = "track_metadata"
	ArtistMetadata          = "artist_metadata"
)

// Tables lists the destination tables in creation order.
var Tables = []Table{
	{
		Name: MasterTable,
		Columns: []Column{
			{Name: "track_id", Type: "VARCHAR(50)"},
			{Name: "track_name", Type: "TEXT"},
			{Name: "track_popularity", Type: "INTEGER"},
			{Name: "artist_id", Type: "VARCHAR(50)"},
			{Name: "artist_name", Type: "TEXT"},
			{Name: "followers", Type: "FLOAT"},
			{Name: "genres", Type: "TEXT"},
			{Name: "artist_popularity", Type: "INTEGER"},
			{Name: "danceability", Type: "FLOAT"},
			{Name: "energy", Type: "FLOAT"},
			{Name: "tempo", Type: "FLOAT"},
			{Name: "related_ids", Type: "TEXT[]"},
		},
	},
	{
		Name: RecommendationsExploded,
		Columns: []Column{
			{Name: "id", Type: "VARCHAR(50)"},
			{Name: "related_id", Type: "VARCHAR(50)"},
		},
	},
	{
		Name: ArtistTrack,
		Columns: []Column{
			{Name: "id", Type: "VARCHAR(50)"},
			{Name: "artists_id", Type: "VARCHAR(50)"},
		},
	},
	{
		Name: TrackMetadata,
		Columns: []Column{
			{Name: "id", Type: "VARCHAR(50)", PrimaryKey: true},
			{Name: "name", Type: "TEXT"},
			{Name: "popularity", Type: "INTEGER"},
			{Name: "duration_ms", Type: "INTEGER"},
			{Name: "danceability", Type: "FLOAT"},
			{Name: "energy", Type: "FLOAT"},
			{Name: "tempo", Type: "FLOAT"},
		},
	},
	{
		Name: ArtistMetadata,
		Columns: []Column{
			{Name: "id", Type: "VARCHAR(50)", PrimaryKey: true},
			{Name: "name", Type: "TEXT"},
			{Name: "followers", Type: "FLOAT"},
			{Name: "popularity", Type: "INTEGER"},
		},
	},
}

// Lookup returns the definition of the named table.
func Lookup(name string) (Table, bool) {
	for _, t := range Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// CreateSQL renders an idempotent CREATE TABLE statement.
func (t Table) CreateSQL() (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("table name is empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("table %s has no columns", t.Name)
	}

	defs := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		def := pgx.Identifier{c.Name}.Sanitize() + " " + c.Type
		if c.PrimaryKey {
			def += " PRIMARY KEY"
		}
		defs = append(defs, def)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)",
		pgx.Identifier{t.Name}.Sanitize(), strings.Join(defs, ",\n    ")), nil
}
