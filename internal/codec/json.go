package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse reads a document from JSON.
// An empty stream or a literal null yields a nil document.
func (c *JSONCodec) Parse(r io.Reader) (*Document, error) {
	var doc *Document
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to parse JSON: %w", ErrMalformedDocument, err)
	}

	return doc, nil
}

// Export writes a document as indented JSON
func (c *JSONCodec) Export(doc *Document, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// MarshalDocument encodes a document compactly, as stored by repositories
func MarshalDocument(doc *Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}

// UnmarshalDocument decodes a stored document; empty data yields nil
func UnmarshalDocument(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var doc *Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON: %w", ErrMalformedDocument, err)
	}
	return doc, nil
}
