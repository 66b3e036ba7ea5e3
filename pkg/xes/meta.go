package xes

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/RCoanda/feldspar/pkg/trace"
)

// ExtractMeta runs the metadata pre-pass: a scan over its own resource
// chain that harvests classifier, extension and global declarations
// plus log-level attributes, stopping as soon as the first trace
// element is reached. Declarations are assumed to precede all traces.
// No resources stay open on return.
func (imp *Importer) ExtractMeta() (*trace.Meta, error) {
	r, cleanup, err := imp.openChain()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	dec := xml.NewDecoder(bufio.NewReaderSize(r, imp.cfg.BufferSize))
	meta := trace.NewMeta()
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return meta, nil
			}
			return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch se.Name.Local {
		case "log":
			// Descend into the container.

		case "trace":
			return meta, nil

		case "classifier":
			var c trace.Classifier
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "name":
					c.Name = a.Value
				case "keys":
					c.Keys = a.Value
				}
			}
			if c.Name != "" {
				meta.Classifiers[c.Name] = c
			}
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
			}

		case "extension":
			var e trace.Extension
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "name":
					e.Name = a.Value
				case "prefix":
					e.Prefix = a.Value
				case "uri":
					e.URI = a.Value
				}
			}
			if e.Name != "" {
				meta.Extensions[e.Name] = e
			}
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
			}

		case "global":
			scope := "event"
			for _, a := range se.Attr {
				if a.Name.Local == "scope" {
					scope = a.Value
				}
			}
			dst := meta.Omni.Event
			if scope == "trace" {
				dst = meta.Omni.Trace
			}
			if err := collectGlobals(dec, dst); err != nil {
				return nil, err
			}

		default:
			// A scalar attribute of the log itself.
			if key, v, ok := parseAttr(se); ok {
				meta.Attributes[key] = v
			}
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
			}
		}
	}
}

// collectGlobals reads the children of a global element into dst.
func collectGlobals(dec *xml.Decoder, dst map[string]trace.Value) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedSource, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if key, v, ok := parseAttr(t); ok {
				dst[key] = v
			}
			if err := dec.Skip(); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformedSource, err)
			}
		case xml.EndElement:
			if t.Name.Local == "global" {
				return nil
			}
		}
	}
}
