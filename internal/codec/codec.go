package codec

import (
	"fmt"
	"io"
	"strings"
)

// Importer parses a circuit document from a stream
type Importer interface {
	Parse(r io.Reader) (*Document, error)
	Format() string
}

// Exporter writes a circuit document to a stream
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	Format() string
}

// Codec both imports and exports one format
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec for "json" or "yaml" ("yml" accepted)
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// FormatFromPath infers the codec format from a file extension
func FormatFromPath(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return "yaml"
	default:
		return "json"
	}
}
