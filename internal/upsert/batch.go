package upsert

import "iter"

// Batches partitions seq into consecutive slices of at most size elements.
// A batch is flushed as soon as it is full; the final batch may be shorter and
// is flushed when seq ends. Each yielded slice is freshly allocated. The result
// restarts seq when ranged over again.
func Batches[T any](seq iter.Seq[T], size int) iter.Seq[[]T] {
	if size < 1 {
		size = 1
	}
	return func(yield func([]T) bool) {
		batch := make([]T, 0, size)
		for v := range seq {
			batch = append(batch, v)
			if len(batch) == size {
				if !yield(batch) {
					return
				}
				batch = make([]T, 0, size)
			}
		}
		if len(batch) > 0 {
			yield(batch)
		}
	}
}
