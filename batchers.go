package etl

// Batcher groups transformed records into batches for loading. Implement this
// interface on the job when count-based batching is insufficient.
//
// Batch is called whenever the pending buffer reaches LoadBatchSize and once
// more to flush what is left when the transform stage closes.
type Batcher[T any] interface {
	Batch(items []T) [][]T
}

// BatcherFunc adapts a plain function to the [Batcher] interface.
type BatcherFunc[T any] func(items []T) [][]T

func (f BatcherFunc[T]) Batch(items []T) [][]T {
	return f(items)
}

// NoBatcher returns all pending items as a single batch.
func NoBatcher[T any]() Batcher[T] {
	return BatcherFunc[T](func(items []T) [][]T {
		if len(items) == 0 {
			return nil
		}
		return [][]T{items}
	})
}

// SizeBatcher creates batches with at most maxSize items each, preserving
// input order. This is the default when the job implements no Batcher.
func SizeBatcher[T any](maxSize int) Batcher[T] {
	return BatcherFunc[T](func(items []T) [][]T {
		return chunk(items, maxSize)
	})
}

// chunk splits a slice into sub-slices of at most size elements.
func chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 || size <= 0 {
		return nil
	}

	result := make([][]T, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		result = append(result, items[i:end])
	}
	return result
}
