package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/RCoanda/feldspar/pkg/trace"
)

// ErrInvalidCacheTarget is returned when a cache target path does not
// resolve to a usable file location.
var ErrInvalidCacheTarget = errors.New("pipeline: invalid cache target")

// fileCache serves every pass from an on-disk materialization: an
// append-only sequence of msgpack frames, one record per frame.
type fileCache[T any] struct {
	src  Stage[T]
	path string
}

// FileCache returns a stage materialized at path. An empty or missing
// target is populated immediately by one eager, exhausting pass over
// src. A target that already holds data becomes the dataset as-is and
// src is never pulled — the cache is built once and read forever, even
// across processes and across pipelines pointed at the same file;
// keeping those consistent is the caller's responsibility.
//
// The record type must round-trip through msgpack.
func FileCache[T any](src Stage[T], path string) (Stage[T], error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidCacheTarget, path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %v", ErrInvalidCacheTarget, err)
	case err == nil && info.Size() > 0:
		// Existing contents win; population is skipped entirely.
	default:
		if err := populate(src, path); err != nil {
			return nil, err
		}
	}
	return &fileCache[T]{src: src, path: path}, nil
}

// populate writes one frame per record pulled from src. On any failure
// the partial file is removed so a later construction can retry.
func populate[T any](src Stage[T], path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCacheTarget, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	w := bufio.NewWriter(f)
	enc := msgpack.NewEncoder(w)
	for v, srcErr := range src.Iterate() {
		if srcErr != nil {
			return srcErr
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Attributes defers to the original upstream, which stays correct
// regardless of materialization state.
func (c *fileCache[T]) Attributes() *trace.Meta { return c.src.Attributes() }

// Iterate reads frames back in order. End-of-file is the normal end of
// the sequence; the handle is closed exactly once per pass.
func (c *fileCache[T]) Iterate() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		f, err := os.Open(c.path)
		if err != nil {
			var zero T
			yield(zero, err)
			return
		}
		defer f.Close()

		dec := msgpack.NewDecoder(bufio.NewReader(f))
		for {
			var v T
			if err := dec.Decode(&v); err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				var zero T
				yield(zero, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}
