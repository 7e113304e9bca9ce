package load

import (
	"fmt"
	"path"
	"strings"

	"github.com/vvka-141/trackpipe/internal/schema"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// DefaultManifest returns the five staged datasets in load order.
// Only the master table accumulates across runs; every other table is
// replaced wholesale by each batch.
func DefaultManifest() []trackpipe.LoadUnit {
	return []trackpipe.LoadUnit{
		{Source: "stage2/master_table", Table: schema.MasterTable, Mode: trackpipe.WriteModeAppend},
		{Source: "stage3/recommendations_exploded", Table: schema.RecommendationsExploded, Mode: trackpipe.WriteModeOverwrite},
		{Source: "stage3/artist_track", Table: schema.ArtistTrack, Mode: trackpipe.WriteModeOverwrite},
		{Source: "stage3/track_metadata", Table: schema.TrackMetadata, Mode: trackpipe.WriteModeOverwrite},
		{Source: "stage3/artist_metadata", Table: schema.ArtistMetadata, Mode: trackpipe.WriteModeOverwrite},
	}
}

// ValidateManifest rejects units naming unknown tables, absolute or
// escaping sources, or undefined write modes.
func ValidateManifest(units []trackpipe.LoadUnit) error {
	for _, u := range units {
		if _, ok := schema.Lookup(u.Table); !ok {
			return fmt.Errorf("unknown destination table %q: %w", u.Table, trackpipe.ErrInvalidConfig)
		}
		clean := path.Clean(u.Source)
		if u.Source == "" || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
			return fmt.Errorf("source %q must be relative to the input root: %w", u.Source, trackpipe.ErrInvalidConfig)
		}
		if u.Mode != trackpipe.WriteModeAppend && u.Mode != trackpipe.WriteModeOverwrite {
			return fmt.Errorf("table %s: write mode %v: %w", u.Table, u.Mode, trackpipe.ErrInvalidConfig)
		}
	}
	return nil
}
