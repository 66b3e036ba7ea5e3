// Package detect classifies source files by byte signature: which
// compression codec wraps them and whether the payload looks like
// markup at all.
package detect

import (
	"bytes"
	"io"
	"os"

	"github.com/h2non/filetype"
)

// HeaderSize is the number of bytes the sniffers need.
const HeaderSize = 262

// Codec is a supported compression codec.
type Codec uint8

const (
	CodecNone Codec = iota
	CodecGzip
	CodecZip
)

// String returns the codec name.
func (c Codec) String() string {
	switch c {
	case CodecGzip:
		return "gz"
	case CodecZip:
		return "zip"
	default:
		return "none"
	}
}

// ParseCodec parses a codec name.
func ParseCodec(s string) (Codec, bool) {
	switch s {
	case "", "none":
		return CodecNone, true
	case "gz", "gzip":
		return CodecGzip, true
	case "zip":
		return CodecZip, true
	default:
		return CodecNone, false
	}
}

// Sniff classifies the header bytes of a source. When a supported
// compression signature is found the matching codec is returned. The
// second result is the extension of whatever container the signature
// matched ("" when nothing matched), so callers can tell a plain file
// apart from a recognized-but-unsupported one such as bz2 or xz.
func Sniff(head []byte) (Codec, string) {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return CodecNone, ""
	}
	switch kind.Extension {
	case "gz":
		return CodecGzip, kind.Extension
	case "zip":
		return CodecZip, kind.Extension
	default:
		return CodecNone, kind.Extension
	}
}

// LooksLikeXML reports whether the sample plausibly starts an XML
// document. A UTF-8 BOM and leading whitespace are tolerated.
func LooksLikeXML(sample []byte) bool {
	if len(sample) >= 3 && sample[0] == 0xEF && sample[1] == 0xBB && sample[2] == 0xBF {
		sample = sample[3:]
	}
	sample = bytes.TrimLeft(sample, " \t\r\n")
	return len(sample) > 0 && sample[0] == '<'
}

// ReadHeader reads up to HeaderSize bytes from the start of the file.
func ReadHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, HeaderSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return head[:n], nil
}

// Exists reports whether path resolves to an existing file.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
