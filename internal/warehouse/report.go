package warehouse

import (
	"time"

	"github.com/rs/zerolog"
)

// Stage identifies a step of the pipeline.
type Stage string

// Pipeline stages, in the order they run.
const (
	StageExtract    Stage = "extract"
	StageDates      Stage = "dates"
	StageDimensions Stage = "dimensions"
	StageFacts      Stage = "facts"
)

// TableStats counts what happened to one target table (or, for the extract
// stage, one source table) during a run.
type TableStats struct {
	Table string
	Stage Stage

	// Read is the number of candidate rows handed to the loader.
	Read int
	// Inserted rows were new.
	Inserted int
	// Existing rows were already present and left untouched.
	Existing int
	// Orphaned rows referenced a parent that does not exist.
	Orphaned int
	// Invalid rows carried a value that failed validation.
	Invalid int
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (s *TableStats) MarshalZerologObject(e *zerolog.Event) {
	e.Str("table", s.Table).
		Int("read", s.Read).
		Int("inserted", s.Inserted).
		Int("existing", s.Existing)
	if s.Orphaned > 0 {
		e.Int("orphaned", s.Orphaned)
	}
	if s.Invalid > 0 {
		e.Int("invalid", s.Invalid)
	}
}

// Report summarizes a pipeline run.
type Report struct {
	StartedAt time.Time
	Duration  time.Duration
	DryRun    bool

	// Tables is in pipeline order.
	Tables []*TableStats

	// FailedStage is empty on success.
	FailedStage Stage
	Err         error
}

// Succeeded reports whether every stage completed.
func (r *Report) Succeeded() bool {
	return r.Err == nil
}

// Table returns the stats recorded for name, or nil.
func (r *Report) Table(name string) *TableStats {
	for _, t := range r.Tables {
		if t.Table == name {
			return t
		}
	}
	return nil
}

func (r *Report) track(stage Stage, table string) *TableStats {
	s := &TableStats{Table: table, Stage: stage}
	r.Tables = append(r.Tables, s)
	return s
}

// Totals sums the per-table counters of one stage.
func (r *Report) Totals(stage Stage) TableStats {
	total := TableStats{Table: string(stage), Stage: stage}
	for _, t := range r.Tables {
		if t.Stage != stage {
			continue
		}
		total.Read += t.Read
		total.Inserted += t.Inserted
		total.Existing += t.Existing
		total.Orphaned += t.Orphaned
		total.Invalid += t.Invalid
	}
	return total
}
