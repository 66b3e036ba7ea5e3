package pipeline

import (
	"iter"
	"sync"

	"github.com/RCoanda/feldspar/pkg/trace"
)

// memCache materializes its upstream into an in-process buffer. The
// populated flag transitions false -> true exactly once; afterwards
// every pass reads the buffer and the upstream is never pulled again.
type memCache[T any] struct {
	src Stage[T]

	mu        sync.Mutex
	populated bool
	buf       []T
}

// Cache returns a stage whose output matches src record-for-record but
// is computed from src at most once. The first pass that runs to
// exhaustion populates the cache; a pass abandoned early or ended by
// an upstream error leaves the cache unpopulated, and the next pass
// restarts from the upstream.
func Cache[T any](src Stage[T]) Stage[T] {
	return &memCache[T]{src: src}
}

// Attributes defers to the original upstream regardless of
// materialization state.
func (c *memCache[T]) Attributes() *trace.Meta { return c.src.Attributes() }

func (c *memCache[T]) Iterate() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		c.mu.Lock()
		populated, buf := c.populated, c.buf
		c.mu.Unlock()

		if populated {
			for _, v := range buf {
				if !yield(v, nil) {
					return
				}
			}
			return
		}

		// The pass buffer is private until the pass completes, so a
		// restart after partial consumption cannot see stale records.
		fresh := make([]T, 0)
		for v, err := range c.src.Iterate() {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			fresh = append(fresh, v)
			if !yield(v, nil) {
				return
			}
		}

		c.mu.Lock()
		if !c.populated {
			c.populated, c.buf = true, fresh
		}
		c.mu.Unlock()
	}
}
