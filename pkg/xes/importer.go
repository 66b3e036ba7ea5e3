// Package xes imports event logs in the XES interchange format. The
// importer parses incrementally: one pull produces one trace, and no
// document tree is ever held in memory.
package xes

import (
	"archive/zip"
	"bufio"
	"compress/gzip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"time"

	"github.com/RCoanda/feldspar/pkg/detect"
	"github.com/RCoanda/feldspar/pkg/trace"
)

// Compression selects how the source is decompressed while opening.
type Compression uint8

const (
	// CompressionNone opens the source as-is.
	CompressionNone Compression = iota
	// CompressionInfer sniffs the file header and picks the codec.
	CompressionInfer
	// CompressionGzip forces gunzip decompression.
	CompressionGzip
	// CompressionZip treats the source as a zip archive holding the
	// log as its first entry.
	CompressionZip
)

// ParseCompression parses a compression flag value.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "infer":
		return CompressionInfer, nil
	case "gz", "gzip":
		return CompressionGzip, nil
	case "zip":
		return CompressionZip, nil
	default:
		return CompressionNone, fmt.Errorf("%w: %q", ErrUnsupportedCompression, s)
	}
}

// Config holds importer configuration.
type Config struct {
	// Compression selects the decompression applied when opening the
	// source.
	Compression Compression

	// BufferSize is the size of the read buffer in bytes.
	BufferSize int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Compression: CompressionNone,
		BufferSize:  64 * 1024,
	}
}

// Importer produces a restartable sequence of traces from an XES file.
// Every pass reopens the source from scratch; passes never share a
// live parser.
type Importer struct {
	path     string
	codec    detect.Codec
	cfg      Config
	meta     *trace.Meta
	warnings []string

	// openFile is swapped in tests to observe handle lifecycles.
	openFile func(string) (io.ReadCloser, error)
}

// NewImporter resolves compression for the source at path and returns
// an importer for it. With CompressionInfer, a header signature outside
// the supported codec set fails with ErrUnsupportedCompression. With
// CompressionNone, content that does not look like markup produces a
// non-fatal warning, retrievable via Warnings.
func NewImporter(path string, cfg Config) (*Importer, error) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}

	head, err := detect.ReadHeader(path)
	if err != nil {
		return nil, err
	}
	codec, ext := detect.Sniff(head)

	imp := &Importer{
		path: path,
		cfg:  cfg,
		openFile: func(p string) (io.ReadCloser, error) {
			return os.Open(p)
		},
	}

	switch cfg.Compression {
	case CompressionInfer:
		if codec == detect.CodecNone && ext != "" {
			return nil, fmt.Errorf("%w: file signature %q", ErrUnsupportedCompression, ext)
		}
		imp.codec = codec
	case CompressionGzip:
		imp.codec = detect.CodecGzip
	case CompressionZip:
		imp.codec = detect.CodecZip
	default:
		imp.codec = detect.CodecNone
		if ext != "" || !detect.LooksLikeXML(head) {
			imp.warnings = append(imp.warnings,
				fmt.Sprintf("%s might not be an .xes file", path))
		}
	}

	return imp, nil
}

// Load builds an importer and runs the metadata pre-pass, so the
// returned importer satisfies the full pipeline stage contract.
func Load(path string, cfg Config) (*Importer, error) {
	imp, err := NewImporter(path, cfg)
	if err != nil {
		return nil, err
	}
	meta, err := imp.ExtractMeta()
	if err != nil {
		return nil, err
	}
	imp.meta = meta
	return imp, nil
}

// Warnings returns non-fatal findings from construction.
func (imp *Importer) Warnings() []string {
	return imp.warnings
}

// Attributes returns the dataset metadata harvested by Load.
func (imp *Importer) Attributes() *trace.Meta {
	if imp.meta == nil {
		return trace.NewMeta()
	}
	return imp.meta
}

// openChain opens the resource chain for one pass: raw file, optional
// decompression stream or archive entry. The returned cleanup closes
// everything that was opened, innermost first.
func (imp *Importer) openChain() (io.Reader, func() error, error) {
	switch imp.codec {
	case detect.CodecGzip:
		f, err := imp.openFile(imp.path)
		if err != nil {
			return nil, nil, err
		}
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
		}
		cleanup := func() error {
			zr.Close()
			return f.Close()
		}
		return zr, cleanup, nil

	case detect.CodecZip:
		archive, err := zip.OpenReader(imp.path)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
		}
		if len(archive.File) == 0 {
			archive.Close()
			return nil, nil, fmt.Errorf("%w: empty archive", ErrMalformedSource)
		}
		entry, err := archive.File[0].Open()
		if err != nil {
			archive.Close()
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
		}
		cleanup := func() error {
			entry.Close()
			return archive.Close()
		}
		return entry, cleanup, nil

	default:
		f, err := imp.openFile(imp.path)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	}
}

// Iterate starts a fresh pass over the source. The underlying resource
// chain is released when the pass ends, errors out or is abandoned
// early by the consumer.
func (imp *Importer) Iterate() iter.Seq2[*trace.Trace, error] {
	return func(yield func(*trace.Trace, error) bool) {
		r, cleanup, err := imp.openChain()
		if err != nil {
			yield(nil, err)
			return
		}
		defer cleanup()

		dec := xml.NewDecoder(bufio.NewReaderSize(r, imp.cfg.BufferSize))
		for {
			tok, err := dec.Token()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				yield(nil, fmt.Errorf("%w: %v", ErrMalformedSource, err))
				return
			}
			se, ok := tok.(xml.StartElement)
			if !ok || se.Name.Local != "trace" {
				continue
			}
			tr, err := parseTrace(dec)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(tr, nil) {
				return
			}
		}
	}
}

// parseTrace consumes the current trace subtree token by token. Child
// event elements become events, all other children trace attributes.
func parseTrace(dec *xml.Decoder) (*trace.Trace, error) {
	tr := &trace.Trace{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "event" {
				ev, err := parseEvent(dec)
				if err != nil {
					return nil, err
				}
				tr.Events = append(tr.Events, ev)
				continue
			}
			if key, v, ok := parseAttr(t); ok {
				tr.Attrs = append(tr.Attrs, trace.Attribute{Key: key, Value: v})
			}
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
			}
		case xml.EndElement:
			if t.Name.Local == "trace" {
				return tr, nil
			}
		}
	}
}

func parseEvent(dec *xml.Decoder) (*trace.Event, error) {
	ev := trace.NewEvent()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if key, v, ok := parseAttr(t); ok {
				ev.Set(key, v)
			}
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
			}
		case xml.EndElement:
			if t.Name.Local == "event" {
				return ev, nil
			}
		}
	}
}

// parseAttr reads one attribute element into a key and typed value.
// The element tag carries the type hint; a value that fails to parse
// as the hinted type keeps its literal text.
func parseAttr(se xml.StartElement) (string, trace.Value, bool) {
	var key, raw string
	for _, a := range se.Attr {
		switch a.Name.Local {
		case "key":
			key = a.Value
		case "value":
			raw = a.Value
		}
	}
	if key == "" {
		return "", trace.Value{}, false
	}
	return key, coerce(se.Name.Local, raw), true
}

func coerce(tag, raw string) trace.Value {
	switch tag {
	case "int":
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return trace.Value{Type: trace.TypeInt, Str: raw, Int: n}
		}
	case "float":
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return trace.Value{Type: trace.TypeFloat, Str: raw, Float: f}
		}
	case "date":
		if ts, err := parseTimestamp(raw); err == nil {
			return trace.Value{Type: trace.TypeTimestamp, Str: raw, Time: ts}
		}
	}
	return trace.StringValue(raw)
}

// timestampLayouts covers the formats seen in XES files in the wild.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.000Z07:00",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("xes: unparsable timestamp %q", raw)
}
