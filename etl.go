package etl

import (
	"context"
	"iter"
)

// Stage identifies where in the pipeline an event occurred.
type Stage string

const (
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
	StageFinish    Stage = "finish"
)

// Action tells the pipeline what to do after an error.
type Action string

const (
	ActionFail Action = "fail" // Stop pipeline and return error
	ActionSkip Action = "skip" // Skip this record and continue
)

// Job defines the core ETL operations. This is the only required interface to
// implement.
//
// The type parameters are:
//   - S: source record type (extracted from the data sources)
//   - T: target record type (handed to Load)
//
// For transformation, implement one of:
//   - [Transformer]: 1:1 transform (one input record -> one output record)
//   - [Expander]: 1:N transform (one input record -> multiple output records)
//
// If both are implemented, Transformer takes precedence.
type Job[S, T any] interface {
	// Extract yields records from the sources. Yielding a non-nil error
	// reports an extraction failure; without an ErrorHandler it aborts the run.
	Extract(ctx context.Context) iter.Seq2[S, error]

	// Load receives a batch of transformed records.
	Load(ctx context.Context, batch []T) error
}

// Transformer converts one input record to one output record.
//
// Example:
//
//	func (j *ReportJob) Transform(ctx context.Context, o Order) (Purchase, error) {
//	    return report.Join(o, j.customers), nil
//	}
type Transformer[S, T any] interface {
	Transform(ctx context.Context, src S) (T, error)
}

// Expander converts one input record to zero or more output records.
// Returning an empty slice drops the record before the load stage.
type Expander[S, T any] interface {
	Expand(ctx context.Context, src S) ([]T, error)
}
