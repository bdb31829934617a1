package sqlite

import (
	"fmt"
	"time"

	"logicsim/internal/codec"
	"logicsim/internal/repository"
)

// ============================================================================
// Circuit Row Scanner
// ============================================================================

// circuitRow holds the listing columns of a circuit query
type circuitRow struct {
	Name      string
	Revision  int64
	UpdatedAt time.Time
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match circuitColumns order exactly: name, revision, updated_at
func (r *circuitRow) scanArgs() []interface{} {
	return []interface{}{
		&r.Name,      // 1
		&r.Revision,  // 2
		&r.UpdatedAt, // 3
	}
}

// toInfo converts the scanned row to a repository.CircuitInfo
func (r *circuitRow) toInfo() repository.CircuitInfo {
	return repository.CircuitInfo{
		Name:      r.Name,
		Revision:  r.Revision,
		UpdatedAt: r.UpdatedAt,
	}
}

// circuitColumns is the SELECT column list for circuit listings
const circuitColumns = `name, revision, updated_at`

// ============================================================================
// Write Helpers
// ============================================================================

// documentArg encodes a document for the document column.
// A nil document is stored as an empty graph.
func documentArg(doc *codec.Document) ([]byte, error) {
	if doc == nil {
		doc = &codec.Document{Class: codec.GraphClass}
	}
	data, err := codec.MarshalDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}
