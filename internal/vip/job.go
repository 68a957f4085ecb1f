// Package vip implements the VIP customer report as an etl job: orders are
// extracted from SQLite, joined to the customers CSV, summed per customer and
// the customers above the spend threshold are written to a CSV report.
package vip

import (
	"context"
	"fmt"
	"io"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"

	etl "github.com/TranTienDanh-05/Lab2-etl"
	"github.com/TranTienDanh-05/Lab2-etl/internal/config"
	"github.com/TranTienDanh-05/Lab2-etl/internal/logger"
	"github.com/TranTienDanh-05/Lab2-etl/internal/report"
	"github.com/TranTienDanh-05/Lab2-etl/internal/source"
)

// Job is a single report run. It must not be reused.
type Job struct {
	cfg     config.Config
	log     *logger.Logger
	console io.Writer

	runID     string
	startedAt time.Time
	customers map[int64]report.Customer
	agg       report.Aggregator
	rows      []report.Row

	transformOnce sync.Once
}

var (
	_ etl.Job[report.Order, report.Purchase]         = (*Job)(nil)
	_ etl.Transformer[report.Order, report.Purchase] = (*Job)(nil)
	_ etl.ErrorHandler                               = (*Job)(nil)
	_ etl.Starter                                    = (*Job)(nil)
	_ etl.Finisher                                   = (*Job)(nil)
	_ etl.Stopper                                    = (*Job)(nil)
	_ etl.ProgressReporter                           = (*Job)(nil)
	_ etl.TransformWorkers                           = (*Job)(nil)
	_ etl.LoadWorkers                                = (*Job)(nil)
	_ etl.LoadBatchSize                              = (*Job)(nil)
)

// New creates a job. Progress lines and the final table go to console;
// structured logs go to log.
func New(cfg config.Config, log *logger.Logger, console io.Writer) *Job {
	return &Job{cfg: cfg, log: log, console: console}
}

// Run executes the job on a new pipeline.
func Run(ctx context.Context, cfg config.Config, log *logger.Logger, console io.Writer) ([]report.Row, error) {
	job := New(cfg, log, console)
	if err := etl.New[report.Order, report.Purchase](job).Run(ctx); err != nil {
		return nil, err
	}
	return job.Rows(), nil
}

// Rows returns the report rows once the job finished successfully.
func (j *Job) Rows() []report.Row { return j.rows }

func (j *Job) printf(format string, args ...any) {
	fmt.Fprintf(j.console, format, args...)
}

func (j *Job) Start(ctx context.Context) context.Context {
	j.runID = uuid.NewString()
	j.startedAt = time.Now()
	j.log = j.log.With("run_id", j.runID)
	j.log.Info("report run starting",
		"customers", j.cfg.CustomersPath,
		"orders_db", j.cfg.OrdersDB,
		"output", j.cfg.OutputPath,
		"threshold", j.cfg.Threshold,
	)
	j.printf("STARTED ETL PROCESS...\n")
	return ctx
}

// Extract reads the customers file, then the orders table, and yields the
// orders. Nothing is yielded unless both sources were read.
func (j *Job) Extract(ctx context.Context) iter.Seq2[report.Order, error] {
	return func(yield func(report.Order, error) bool) {
		j.printf("[1] Extracting data from heterogeneous sources...\n")

		customers, err := source.ReadCustomers(j.cfg.CustomersPath)
		if err != nil {
			j.printf("Error reading CSV: %v\n", err)
			yield(report.Order{}, err)
			return
		}
		j.printf("   -> Loaded %d customers from CSV.\n", len(customers))
		j.log.Debug("customers loaded", "count", len(customers))

		orders, err := source.ReadOrders(ctx, j.cfg.OrdersDB)
		if err != nil {
			j.printf("Error reading DB: %v\n", err)
			yield(report.Order{}, err)
			return
		}
		j.printf("   -> Loaded %d orders from SQLite.\n", len(orders))
		j.log.Debug("orders loaded", "count", len(orders))

		j.customers = report.Index(customers)
		for _, o := range orders {
			if !yield(o, nil) {
				return
			}
		}
	}
}

func (j *Job) Transform(_ context.Context, o report.Order) (report.Purchase, error) {
	j.transformOnce.Do(func() {
		j.printf("[2] Transforming data...\n")
	})
	p := report.Join(o, j.customers)
	if !p.Matched {
		j.log.Warn("order has no matching customer", "order_id", o.ID, "customer_id", o.CustomerID)
	}
	return p, nil
}

// Load folds purchases into the per-customer totals. The pipeline runs a
// single load worker for this job, so the aggregator needs no locking.
func (j *Job) Load(_ context.Context, batch []report.Purchase) error {
	j.agg.Add(batch...)
	return nil
}

// Finish filters and sorts the totals, prints the table and writes the report.
func (j *Job) Finish(_ context.Context, _ *etl.Stats) error {
	if j.agg.Purchases() == 0 {
		// Extract never reached the transform stage.
		j.printf("[2] Transforming data...\n")
	}
	totals := j.agg.Totals()
	rows := report.VIP(totals, j.cfg.Threshold)
	report.SortByTotal(rows)
	j.log.Debug("aggregated", "groups", len(totals), "vip", len(rows))

	j.printf("[3] Loading Data to Report...\n")
	j.printf("\n--- FINAL REPORT ---\n")
	if err := report.Render(j.console, rows); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := report.WriteCSV(j.cfg.OutputPath, rows); err != nil {
		return err
	}
	j.printf("\nReport saved to '%s'\n", j.cfg.OutputPath)

	j.rows = rows
	return nil
}

// OnError logs the failing stage. Every error aborts the run.
func (j *Job) OnError(_ context.Context, stage etl.Stage, err error) etl.Action {
	j.log.Warn("stage failed", "stage", string(stage), "error", err)
	return etl.ActionFail
}

func (j *Job) Stop(_ context.Context, stats *etl.Stats, err error) {
	elapsed := time.Since(j.startedAt)
	if err != nil {
		j.log.Error("report run failed", "error", err, "stats", stats, "elapsed", elapsed)
		return
	}
	j.log.Info("report run complete", "stats", stats, "rows", len(j.rows), "elapsed", elapsed)
}

func (j *Job) ReportInterval() int { return 10000 }

func (j *Job) OnProgress(_ context.Context, stats *etl.Stats) {
	j.log.Info("progress", "stats", stats)
}

func (j *Job) TransformWorkers() int { return 1 }

func (j *Job) LoadWorkers() int { return 1 }

func (j *Job) LoadBatchSize() int { return j.cfg.BatchSize }
