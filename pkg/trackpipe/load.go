package trackpipe

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WriteMode is the destination policy for one load unit.
type WriteMode int

const (
	// WriteModeAppend adds rows to the destination and keeps prior content.
	WriteModeAppend WriteMode = iota
	// WriteModeOverwrite replaces all destination content with the new rows.
	WriteModeOverwrite
)

func (m WriteMode) String() string {
	switch m {
	case WriteModeAppend:
		return "append"
	case WriteModeOverwrite:
		return "overwrite"
	default:
		return fmt.Sprintf("WriteMode(%d)", int(m))
	}
}

// LoadUnit is one (source dataset, destination table, write mode) triple.
type LoadUnit struct {
	// Source is relative to the input root, slash separated: "stage3/artist_track"
	Source string
	Table  string
	Mode   WriteMode
}

// LoadResult is the outcome of one attempted load unit.
// Err is nil on success.
type LoadResult struct {
	Unit     LoadUnit
	Rows     int64
	Duration time.Duration
	Err      error
}

// OK reports whether the unit loaded.
func (r LoadResult) OK() bool { return r.Err == nil }

// LoadReport collects everything observable about one load-stage run.
type LoadReport struct {
	RunID    uuid.UUID
	Started  time.Time
	Finished time.Time

	// Provisioning is the provisioner's error, nil when the schema committed.
	// A provisioning failure does not stop the load.
	Provisioning error

	Results []LoadResult
}

// NewLoadReport starts a report with a fresh run id.
func NewLoadReport(now time.Time) *LoadReport {
	return &LoadReport{RunID: uuid.New(), Started: now}
}

// Failed returns the results whose unit did not load.
func (r *LoadReport) Failed() []LoadResult {
	var out []LoadResult
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// TotalRows sums rows written by successful units.
func (r *LoadReport) TotalRows() int64 {
	var n int64
	for _, res := range r.Results {
		if res.OK() {
			n += res.Rows
		}
	}
	return n
}

// Elapsed is the wall time of the run; zero until Finished is set.
func (r *LoadReport) Elapsed() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}
