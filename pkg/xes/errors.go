package xes

import "errors"

var (
	// ErrUnsupportedCompression is returned at construction when
	// compression inference recognizes a container this importer
	// cannot decompress.
	ErrUnsupportedCompression = errors.New("xes: unsupported compression")

	// ErrMalformedSource is returned during iteration when the input
	// is inconsistent with the expected markup structure.
	ErrMalformedSource = errors.New("xes: malformed source")
)
