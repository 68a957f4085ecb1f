package etl

import "context"

// ReportInterval controls how often progress is reported, measured in records
// loaded. Overridden by WithReportInterval; DefaultReportInterval otherwise.
type ReportInterval interface {
	ReportInterval() int
}

// ProgressReporter receives periodic progress updates. OnProgress is called
// from the load worker each time the loaded count crosses a ReportInterval
// boundary, so it should not block.
//
// Example:
//
//	func (j *ReportJob) ReportInterval() int { return 1000 }
//
//	func (j *ReportJob) OnProgress(ctx context.Context, stats *etl.Stats) {
//	    j.log.Info("progress", "stats", stats)
//	}
type ProgressReporter interface {
	ReportInterval

	OnProgress(ctx context.Context, stats *Stats)
}
