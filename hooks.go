package etl

import "context"

// Filter excludes records before transformation.
//
// Filter runs in the extract stage, so dropped records never reach the
// transform or load stages. They are counted in Stats.Filtered.
//
// Example:
//
//	func (j *ReportJob) Include(o Order) bool {
//	    return o.Amount != 0
//	}
type Filter[S any] interface {
	// Include returns true if the record should be processed.
	Include(src S) bool
}

// ErrorHandler customizes error handling per pipeline stage. Without an
// ErrorHandler, the pipeline stops on the first error in any stage.
//
//	func (j *ReportJob) OnError(ctx context.Context, stage etl.Stage, err error) etl.Action {
//	    if stage == etl.StageTransform {
//	        j.log.Warn("skipping record", "error", err)
//	        return etl.ActionSkip
//	    }
//	    return etl.ActionFail
//	}
//
// Skipped errors still increment Stats.Errors. Errors from Finisher are always
// fatal; OnError is consulted for them only so the handler can observe them.
type ErrorHandler interface {
	// OnError is called when an error occurs during any stage.
	// Return ActionSkip to continue processing, ActionFail to stop the pipeline.
	OnError(ctx context.Context, stage Stage, err error) Action
}

// Starter is called once before extraction begins. The returned context is
// used for every stage and for Stopper.Stop, which makes it the place to
// attach run identifiers or logger fields.
type Starter interface {
	Start(ctx context.Context) context.Context
}

// Finisher is called exactly once after every stage completed without error.
// It is not called when the run failed or when the parent context was
// cancelled, so it is the only safe place to publish results that must not
// exist in partial form (reports, renamed files, committed transactions).
//
// Example:
//
//	func (j *ReportJob) Finish(ctx context.Context, stats *etl.Stats) error {
//	    return report.WriteCSV(j.output, j.agg.Totals())
//	}
//
// An error returned from Finish is returned by Run, prefixed with "finish: ".
// A job with a Finisher whose context is cancelled gets the context error from
// Run, even after a clean drain.
type Finisher interface {
	Finish(ctx context.Context, stats *Stats) error
}

// Stopper is called after pipeline execution completes, regardless of whether
// the pipeline succeeded, failed, or was shut down. err is the same value Run
// returns.
//
// The ctx passed to Stop is the drain context, which stays valid after the
// parent context has been cancelled.
//
// Example:
//
//	func (j *ReportJob) Stop(ctx context.Context, stats *etl.Stats, err error) {
//	    if err != nil {
//	        j.log.Error("pipeline failed", "error", err, "stats", stats)
//	        return
//	    }
//	    j.log.Info("pipeline complete", "stats", stats)
//	}
type Stopper interface {
	Stop(ctx context.Context, stats *Stats, err error)
}
