// Package pipeline composes lazy, restartable transformations over
// streams of records. A stage produces a fresh pass over its logical
// output on every Iterate call and exposes the dataset metadata of the
// source it ultimately derives from; nothing runs until the consumer
// pulls.
package pipeline

import (
	"iter"

	"github.com/RCoanda/feldspar/pkg/trace"
)

// Stage is one node of a pipeline.
type Stage[T any] interface {
	// Iterate returns a fresh pass over the stage's output sequence.
	// Each pair carries either a record or a fatal error; after an
	// error the pass ends.
	Iterate() iter.Seq2[T, error]

	// Attributes returns the dataset metadata. Derived stages never
	// mutate it.
	Attributes() *trace.Meta
}

type sliceStage[T any] struct {
	meta  *trace.Meta
	items []T
}

// FromSlice builds a stage over an in-memory sequence. A nil meta is
// replaced with empty metadata.
func FromSlice[T any](meta *trace.Meta, items []T) Stage[T] {
	if meta == nil {
		meta = trace.NewMeta()
	}
	return &sliceStage[T]{meta: meta, items: items}
}

func (s *sliceStage[T]) Attributes() *trace.Meta { return s.meta }

func (s *sliceStage[T]) Iterate() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, v := range s.items {
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Collect drains a fresh pass into a slice. It stops at the first
// error, returning the records gathered so far alongside it.
func Collect[T any](s Stage[T]) ([]T, error) {
	var out []T
	for v, err := range s.Iterate() {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Count drains a fresh pass and returns the number of records.
func Count[T any](s Stage[T]) (int, error) {
	n := 0
	for _, err := range s.Iterate() {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
