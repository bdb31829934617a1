package repository

import (
	"context"
	"errors"
	"time"

	"logicsim/internal/codec"
)

// ErrEmptyName is returned when a circuit name is blank
var ErrEmptyName = errors.New("repository: empty circuit name")

// CircuitInfo describes a stored circuit without its document
type CircuitInfo struct {
	Name      string    `json:"name"`
	Revision  int64     `json:"revision"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository defines the interface for circuit document storage
type Repository interface {
	// LoadDocument returns the stored document, or nil when the name is unknown
	LoadDocument(ctx context.Context, name string) (*codec.Document, error)

	// SaveDocument replaces the stored document and bumps its revision
	SaveDocument(ctx context.Context, name string, doc *codec.Document) error

	// DeleteDocument removes a circuit; deleting an unknown name is not an error
	DeleteDocument(ctx context.Context, name string) error

	// ListCircuits returns every stored circuit, ordered by name
	ListCircuits(ctx context.Context) ([]CircuitInfo, error)

	// Close releases resources
	Close() error
}
