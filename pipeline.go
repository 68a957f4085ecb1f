package etl

import (
	"context"
	"fmt"
	"time"
)

// transformMode indicates which transformation strategy to use.
type transformMode int

const (
	transformModeTransformer transformMode = iota // 1:1 via Transformer interface
	transformModeExpander                         // 1:N via Expander interface
)

// Pipeline orchestrates the ETL process.
type Pipeline[S, T any] struct {
	job Job[S, T]

	// Configuration overrides (nil means use interface value or default)
	transformWorkerCount *int
	loadWorkerCount      *int
	batchSize            *int
	reportInterval       *int
	drainTimeout         *time.Duration

	// Transformation strategy (detected at construction)
	txMode      transformMode
	transformer Transformer[S, T]
	expander    Expander[S, T]

	// Optional capabilities (detected from job interfaces)
	filter              Filter[S]
	errHandler          ErrorHandler
	progress            ProgressReporter
	starter             Starter
	stopper             Stopper
	finisher            Finisher
	batcher             Batcher[T]
	loadBatchSizeIface  LoadBatchSize
	reportIntervalIface ReportInterval
	transformWorkers    TransformWorkers
	loadWorkers         LoadWorkers
	drainTimeoutIface   DrainTimeout
}

// New creates a new Pipeline for the given job. Optional interfaces are
// auto-detected.
//
// The job must implement Transformer[S, T] or Expander[S, T]; Transformer
// takes precedence when both are present. Panics if neither is implemented.
func New[S, T any](job Job[S, T]) *Pipeline[S, T] {
	p := &Pipeline[S, T]{
		job: job,
	}

	if t, ok := any(job).(Transformer[S, T]); ok {
		p.txMode = transformModeTransformer
		p.transformer = t
	} else if e, ok := any(job).(Expander[S, T]); ok {
		p.txMode = transformModeExpander
		p.expander = e
	} else {
		panic("etl: job must implement Transformer[S, T] or Expander[S, T]")
	}

	if f, ok := any(job).(Filter[S]); ok {
		p.filter = f
	}
	if h, ok := any(job).(ErrorHandler); ok {
		p.errHandler = h
	}
	if t, ok := any(job).(ProgressReporter); ok {
		p.progress = t
	}
	if s, ok := any(job).(Starter); ok {
		p.starter = s
	}
	if s, ok := any(job).(Stopper); ok {
		p.stopper = s
	}
	if f, ok := any(job).(Finisher); ok {
		p.finisher = f
	}
	if b, ok := any(job).(Batcher[T]); ok {
		p.batcher = b
	}
	if s, ok := any(job).(LoadBatchSize); ok {
		p.loadBatchSizeIface = s
	}
	if r, ok := any(job).(ReportInterval); ok {
		p.reportIntervalIface = r
	}
	if c, ok := any(job).(TransformWorkers); ok {
		p.transformWorkers = c
	}
	if c, ok := any(job).(LoadWorkers); ok {
		p.loadWorkers = c
	}
	if g, ok := any(job).(DrainTimeout); ok {
		p.drainTimeoutIface = g
	}

	return p
}

// WithTransformWorkers overrides the number of concurrent transform workers.
// Values less than 1 are ignored.
func (p *Pipeline[S, T]) WithTransformWorkers(n int) *Pipeline[S, T] {
	if n >= 1 {
		p.transformWorkerCount = &n
	}
	return p
}

// WithLoadWorkers overrides the number of concurrent load workers.
// Values less than 1 are ignored.
func (p *Pipeline[S, T]) WithLoadWorkers(n int) *Pipeline[S, T] {
	if n >= 1 {
		p.loadWorkerCount = &n
	}
	return p
}

// WithLoadBatchSize overrides the number of records to batch before loading.
// Values less than 1 are ignored.
func (p *Pipeline[S, T]) WithLoadBatchSize(n int) *Pipeline[S, T] {
	if n >= 1 {
		p.batchSize = &n
	}
	return p
}

// WithReportInterval overrides how often to report progress (in records).
// Values less than 1 are ignored.
func (p *Pipeline[S, T]) WithReportInterval(n int) *Pipeline[S, T] {
	if n >= 1 {
		p.reportInterval = &n
	}
	return p
}

// WithDrainTimeout overrides the graceful shutdown timeout.
// Set to 0 to disable graceful shutdown. Negative values are ignored.
func (p *Pipeline[S, T]) WithDrainTimeout(d time.Duration) *Pipeline[S, T] {
	if d < 0 {
		return p
	}
	p.drainTimeout = &d
	return p
}

// transform applies the appropriate transformation based on the detected mode.
func (p *Pipeline[S, T]) transform(ctx context.Context, src S) ([]T, error) {
	switch p.txMode {
	case transformModeTransformer:
		result, err := p.transformer.Transform(ctx, src)
		if err != nil {
			return nil, err
		}
		return []T{result}, nil

	case transformModeExpander:
		return p.expander.Expand(ctx, src)

	default:
		panic("etl: unknown transform mode")
	}
}

// Run executes the pipeline. It returns after every stage has stopped and,
// on success, after Finisher has run.
func (p *Pipeline[S, T]) Run(ctx context.Context) error {
	stats := &Stats{}

	if p.starter != nil {
		ctx = p.starter.Start(ctx)
	}

	drainCtx, shutdownComplete := p.setupDrainContext(ctx)
	defer close(shutdownComplete)

	drainedSuccessfully, err := p.runStreaming(ctx, drainCtx, stats)
	err = p.handleCompletion(ctx, drainCtx, drainedSuccessfully, stats, err)

	if p.stopper != nil {
		p.stopper.Stop(drainCtx, stats, err)
	}

	return err
}

// setupDrainContext creates a context for graceful shutdown with two-phase management:
// - parent ctx: When cancelled, signals "stop extracting new records"
// - drainCtx: Allows in-flight transform/load operations to complete within timeout
func (p *Pipeline[S, T]) setupDrainContext(ctx context.Context) (context.Context, chan struct{}) {
	drainTimeout := p.resolveDrainTimeout()
	drainCtx, drainCancel := context.WithCancelCause(context.WithoutCancel(ctx))
	shutdownComplete := make(chan struct{})

	if drainTimeout > 0 {
		go p.runDrainTimer(ctx, drainTimeout, drainCancel, shutdownComplete)
	} else {
		go p.mirrorContextCancel(ctx, drainCancel, shutdownComplete)
	}

	return drainCtx, shutdownComplete
}

// runDrainTimer starts a timer when parent context is cancelled, cancelling drain context on timeout.
func (p *Pipeline[S, T]) runDrainTimer(ctx context.Context, timeout time.Duration, cancel context.CancelCauseFunc, done <-chan struct{}) {
	select {
	case <-ctx.Done():
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-timer.C:
			cancel(fmt.Errorf("drain timeout expired after %v", timeout))
		case <-done:
			cancel(nil)
		}
	case <-done:
		cancel(nil)
	}
}

// mirrorContextCancel cancels drain context when parent context is cancelled (no graceful shutdown).
func (p *Pipeline[S, T]) mirrorContextCancel(ctx context.Context, cancel context.CancelCauseFunc, done <-chan struct{}) {
	select {
	case <-ctx.Done():
		cancel(ctx.Err())
	case <-done:
		cancel(nil)
	}
}

// handleCompletion decides the final error and runs Finisher when the input
// was fully processed.
func (p *Pipeline[S, T]) handleCompletion(ctx, drainCtx context.Context, drainedSuccessfully bool, stats *Stats, pipelineErr error) error {
	if pipelineErr != nil {
		return pipelineErr
	}

	if ctx.Err() != nil {
		// A Finisher publishes the result of the whole input, so a cut-short
		// run has produced nothing and fails even when it drained.
		if p.resolveDrainTimeout() == 0 || !drainedSuccessfully || p.finisher != nil {
			return ctx.Err()
		}
		return nil
	}

	if p.finisher == nil {
		return nil
	}
	if err := p.finisher.Finish(drainCtx, stats); err != nil {
		stats.incErrors(1)
		if p.errHandler != nil {
			p.errHandler.OnError(drainCtx, StageFinish, err)
		}
		return fmt.Errorf("finish: %w", err)
	}
	return nil
}
