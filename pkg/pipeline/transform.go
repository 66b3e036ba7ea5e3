package pipeline

import (
	"iter"

	"github.com/RCoanda/feldspar/pkg/trace"
)

// MapFunc transforms a record; it may change the record type entirely.
type MapFunc[In, Out any] func(In) Out

// Predicate reports whether a record should be kept. It must return
// the same answer for the same record across passes; this is a caller
// contract, not enforced here.
type Predicate[T any] func(T) bool

type mapStage[In, Out any] struct {
	src Stage[In]
	fn  MapFunc[In, Out]
}

// Map applies fn to every record of src, in order. Map is stateless
// and fully lazy: each pass re-pulls from a fresh upstream pass, and
// fn runs once per pulled record. A panic inside fn propagates to the
// consumer.
func Map[In, Out any](src Stage[In], fn MapFunc[In, Out]) Stage[Out] {
	return &mapStage[In, Out]{src: src, fn: fn}
}

func (s *mapStage[In, Out]) Attributes() *trace.Meta { return s.src.Attributes() }

func (s *mapStage[In, Out]) Iterate() iter.Seq2[Out, error] {
	return func(yield func(Out, error) bool) {
		for v, err := range s.src.Iterate() {
			if err != nil {
				var zero Out
				yield(zero, err)
				return
			}
			if !yield(s.fn(v), nil) {
				return
			}
		}
	}
}

type filterStage[T any] struct {
	src  Stage[T]
	pred Predicate[T]
}

// Filter yields only the records for which pred returns true,
// preserving relative order. Like Map it holds no state and adds O(1)
// memory.
func Filter[T any](src Stage[T], pred Predicate[T]) Stage[T] {
	return &filterStage[T]{src: src, pred: pred}
}

func (s *filterStage[T]) Attributes() *trace.Meta { return s.src.Attributes() }

func (s *filterStage[T]) Iterate() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for v, err := range s.src.Iterate() {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !s.pred(v) {
				continue
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}
