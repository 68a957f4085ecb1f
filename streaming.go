package etl

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// runStreaming connects the extract, transform, batch and load stages with
// channels and waits for all of them.
// Returns (drainedSuccessfully, error) where drainedSuccessfully is true if:
// - The parent context was cancelled AND
// - All in-flight operations completed within the drain timeout
func (p *Pipeline[S, T]) runStreaming(ctx, drainCtx context.Context, stats *Stats) (bool, error) {
	// The group runs on drainCtx so downstream stages keep draining after the
	// parent context is cancelled.
	group, groupCtx := errgroup.WithContext(drainCtx)

	transformWorkerCount := p.resolveTransformWorkers()
	loadWorkerCount := p.resolveLoadWorkers()
	extractCh := make(chan S, transformWorkerCount)
	transformCh := make(chan []T, transformWorkerCount)
	batchCh := make(chan []T, loadWorkerCount)

	// Extraction watches the parent ctx so it stops when shutdown is requested.
	group.Go(func() error {
		return p.runExtract(ctx, groupCtx, extractCh, stats)
	})

	group.Go(func() error {
		return p.runTransform(groupCtx, extractCh, transformCh, stats)
	})

	group.Go(func() error {
		return p.runBatch(groupCtx, transformCh, batchCh)
	})

	group.Go(func() error {
		return p.runLoad(groupCtx, batchCh, stats)
	})

	err := group.Wait()

	drainedSuccessfully := ctx.Err() != nil && err == nil

	return drainedSuccessfully, err
}

// runExtract extracts records and sends them to the transform stage.
// ctx is checked for shutdown signal (stop extracting), drainCtx is used for channel sends.
// A yielded error fails the stage; otherwise a cancelled ctx returns nil so
// downstream stages can drain.
func (p *Pipeline[S, T]) runExtract(ctx, drainCtx context.Context, out chan<- S, stats *Stats) error {
	defer close(out)

	for record, err := range p.job.Extract(ctx) {
		// A failed read is reported even when shutdown caused it.
		if err != nil {
			stats.incErrors(1)
			if p.errHandler != nil {
				action := p.errHandler.OnError(ctx, StageExtract, err)
				if action == ActionSkip {
					continue
				}
			}
			return fmt.Errorf("extract: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		stats.incExtracted(1)

		if p.filter != nil && !p.filter.Include(record) {
			stats.incFiltered(1)
			continue
		}

		select {
		case out <- record:
		case <-drainCtx.Done():
			return drainCtx.Err()
		}
	}

	return nil
}

func (p *Pipeline[S, T]) runTransform(ctx context.Context, in <-chan S, out chan<- []T, stats *Stats) error {
	defer close(out)

	var transformGroup errgroup.Group

	for range p.resolveTransformWorkers() {
		transformGroup.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case record, ok := <-in:
					if !ok {
						return nil
					}

					results, err := p.transform(ctx, record)
					if err != nil {
						stats.incErrors(1)
						if p.errHandler != nil {
							action := p.errHandler.OnError(ctx, StageTransform, err)
							if action == ActionSkip {
								continue
							}
						}
						return fmt.Errorf("transform: %w", err)
					}

					stats.incTransformed(1)

					if len(results) == 0 {
						continue
					}

					select {
					case out <- results:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}
		})
	}

	return transformGroup.Wait()
}

func (p *Pipeline[S, T]) runBatch(ctx context.Context, in <-chan []T, out chan<- []T) error {
	defer close(out)

	batcher := p.resolveBatcher()
	loadBatchSize := p.resolveLoadBatchSize()

	var pending []T

	flush := func() error {
		for _, batch := range batcher.Batch(pending) {
			if len(batch) == 0 {
				continue
			}
			select {
			case out <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		pending = nil
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case items, ok := <-in:
			if !ok {
				if len(pending) > 0 {
					return flush()
				}
				return nil
			}

			pending = append(pending, items...)

			if len(pending) >= loadBatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
}

func (p *Pipeline[S, T]) runLoad(ctx context.Context, in <-chan []T, stats *Stats) error {
	var loadGroup errgroup.Group

	reportEvery := int64(p.resolveReportInterval())

	for range p.resolveLoadWorkers() {
		loadGroup.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case batch, ok := <-in:
					if !ok {
						return nil
					}

					err := p.job.Load(ctx, batch)
					if err != nil {
						stats.incErrors(1)
						if p.errHandler != nil {
							action := p.errHandler.OnError(ctx, StageLoad, err)
							if action == ActionSkip {
								continue
							}
						}
						return fmt.Errorf("load: %w", err)
					}

					newLoaded := stats.incLoaded(int64(len(batch)))
					prevLoaded := newLoaded - int64(len(batch))

					if p.progress != nil && newLoaded/reportEvery > prevLoaded/reportEvery {
						p.progress.OnProgress(ctx, stats)
					}
				}
			}
		})
	}

	return loadGroup.Wait()
}
