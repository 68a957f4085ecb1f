package etl

import "time"

// Default configuration values.
const (
	DefaultTransformWorkers = 1
	DefaultLoadWorkers      = 1
	DefaultLoadBatchSize    = 100
	DefaultReportInterval   = 10000
	DefaultDrainTimeout     = 30 * time.Second
)

// TransformWorkers sets the number of concurrent transform workers from the
// job struct. WithTransformWorkers takes precedence.
//
// With a single worker, records reach the load stage in extraction order.
type TransformWorkers interface {
	TransformWorkers() int
}

// LoadWorkers sets the number of concurrent load workers from the job struct.
// WithLoadWorkers takes precedence.
//
// Jobs that accumulate state in Load without locking must return 1.
type LoadWorkers interface {
	LoadWorkers() int
}

// LoadBatchSize sets the number of records batched together before calling
// Load. WithLoadBatchSize takes precedence. Ignored when the job implements
// Batcher.
type LoadBatchSize interface {
	LoadBatchSize() int
}

// DrainTimeout controls graceful shutdown. When the parent context is
// cancelled, the pipeline stops extracting and lets in-flight transforms and
// loads finish within the timeout. A zero value aborts immediately.
//
// Finisher is never called for a drained run: the input was not exhausted.
type DrainTimeout interface {
	DrainTimeout() time.Duration
}

// resolveTransformWorkers returns the effective transform worker count.
// Priority: WithTransformWorkers > TransformWorkers interface > DefaultTransformWorkers.
func (p *Pipeline[S, T]) resolveTransformWorkers() int {
	if p.transformWorkerCount != nil {
		return *p.transformWorkerCount
	}
	if p.transformWorkers != nil {
		if n := p.transformWorkers.TransformWorkers(); n >= 1 {
			return n
		}
	}
	return DefaultTransformWorkers
}

// resolveLoadWorkers returns the effective load worker count.
// Priority: WithLoadWorkers > LoadWorkers interface > DefaultLoadWorkers.
func (p *Pipeline[S, T]) resolveLoadWorkers() int {
	if p.loadWorkerCount != nil {
		return *p.loadWorkerCount
	}
	if p.loadWorkers != nil {
		if n := p.loadWorkers.LoadWorkers(); n >= 1 {
			return n
		}
	}
	return DefaultLoadWorkers
}

// resolveLoadBatchSize returns the effective load batch size.
// Priority: WithLoadBatchSize > LoadBatchSize interface > DefaultLoadBatchSize.
func (p *Pipeline[S, T]) resolveLoadBatchSize() int {
	if p.batchSize != nil {
		return *p.batchSize
	}
	if p.loadBatchSizeIface != nil {
		if n := p.loadBatchSizeIface.LoadBatchSize(); n >= 1 {
			return n
		}
	}
	return DefaultLoadBatchSize
}

// resolveReportInterval returns the effective report interval.
// Priority: WithReportInterval > ReportInterval interface > DefaultReportInterval.
func (p *Pipeline[S, T]) resolveReportInterval() int {
	if p.reportInterval != nil {
		return *p.reportInterval
	}
	if p.reportIntervalIface != nil {
		if n := p.reportIntervalIface.ReportInterval(); n >= 1 {
			return n
		}
	}
	return DefaultReportInterval
}

// resolveBatcher returns the job's Batcher if implemented, otherwise a
// SizeBatcher with the resolved load batch size.
func (p *Pipeline[S, T]) resolveBatcher() Batcher[T] {
	if p.batcher != nil {
		return p.batcher
	}
	return SizeBatcher[T](p.resolveLoadBatchSize())
}

// resolveDrainTimeout returns the effective drain timeout.
// Priority: WithDrainTimeout > DrainTimeout interface > DefaultDrainTimeout.
func (p *Pipeline[S, T]) resolveDrainTimeout() time.Duration {
	if p.drainTimeout != nil {
		return *p.drainTimeout
	}
	if p.drainTimeoutIface != nil {
		return p.drainTimeoutIface.DrainTimeout()
	}
	return DefaultDrainTimeout
}
