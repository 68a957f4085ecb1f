// Package etl provides an Extract-Transform-Load pipeline engine.
//
// A job type implements only the interfaces it needs; the pipeline detects
// them at construction and configures itself accordingly. Builder methods
// override interface-provided settings at runtime.
//
// # Quick Start
//
// Implement Job and one of Transformer or Expander:
//
//	type ReportJob struct {
//	    db        *sqlx.DB
//	    customers map[int64]report.Customer
//	    agg       report.Aggregator
//	}
//
//	func (j *ReportJob) Extract(ctx context.Context) iter.Seq2[report.Order, error] {
//	    return func(yield func(report.Order, error) bool) {
//	        var orders []report.Order
//	        if err := j.db.SelectContext(ctx, &orders, "SELECT id, customer_id, amount FROM orders"); err != nil {
//	            yield(report.Order{}, err)
//	            return
//	        }
//	        for _, o := range orders {
//	            if !yield(o, nil) {
//	                return
//	            }
//	        }
//	    }
//	}
//
//	func (j *ReportJob) Transform(ctx context.Context, o report.Order) (report.Purchase, error) {
//	    return report.Join(o, j.customers), nil
//	}
//
//	func (j *ReportJob) Load(ctx context.Context, batch []report.Purchase) error {
//	    j.agg.Add(batch...)
//	    return nil
//	}
//
//	err := etl.New[report.Order, report.Purchase](&ReportJob{db: db}).Run(ctx)
//
// # Optional Interfaces
//
//   - [Filter]: drop source records before transformation
//   - [ErrorHandler]: skip or fail per stage
//   - [Starter], [Stopper]: run setup and teardown around the pipeline
//   - [Finisher]: publish results once every stage succeeded
//   - [ProgressReporter]: periodic progress callbacks
//   - [Batcher]: custom grouping of records handed to Load
//   - [TransformWorkers], [LoadWorkers], [LoadBatchSize], [ReportInterval],
//     [DrainTimeout]: configuration from the job struct
//
// # Configuration
//
// Every knob has a WithXxx builder method and a matching Xxx interface. The
// priority is builder, then interface, then default:
//
//	err := etl.New[report.Order, report.Purchase](job).
//	    WithLoadBatchSize(500).
//	    WithDrainTimeout(10 * time.Second).
//	    Run(ctx)
//
// # Execution
//
// Extract, transform, batch and load run as concurrent stages connected by
// channels. With one transform worker and one load worker (the defaults)
// records reach Load in extraction order and Load is never called
// concurrently, so jobs may accumulate state there without locking.
//
// Run returns once all stages have stopped. When all of them succeeded and
// the context was not cancelled, Finisher runs before Run returns. Stopper
// runs last in every case.
//
// # Error Handling
//
// Without ErrorHandler, the first error from any stage stops the pipeline
// and Run returns it prefixed with the stage name. Wrapped errors stay
// reachable through errors.Is and errors.As.
//
// # Shutdown
//
// For graceful shutdown on SIGINT/SIGTERM, set up signal handling before
// calling Run:
//
//	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//	err := etl.New[report.Order, report.Purchase](job).Run(ctx)
//
// On cancellation extraction stops, in-flight records drain within the drain
// timeout and Finisher is skipped. Run returns nil for a cleanly drained job
// without a Finisher and the context error otherwise.
package etl
