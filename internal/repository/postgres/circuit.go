package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"logicsim/internal/codec"
	"logicsim/internal/repository"
)

// LoadDocument fetches a circuit document by name.
// Returns nil, nil if not found.
func (s *Store) LoadDocument(ctx context.Context, name string) (*codec.Document, error) {
	if name == "" {
		return nil, repository.ErrEmptyName
	}

	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT document FROM circuits WHERE name = $1`, name,
	).Scan(&data)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: load circuit: %w", err)
	}

	doc, err := codec.UnmarshalDocument(data)
	if err != nil {
		return nil, fmt.Errorf("repository: decode circuit %s: %w", name, err)
	}
	return doc, nil
}

// SaveDocument replaces a circuit document and bumps its revision in one transaction.
func (s *Store) SaveDocument(ctx context.Context, name string, doc *codec.Document) error {
	if name == "" {
		return repository.ErrEmptyName
	}
	if doc == nil {
		doc = &codec.Document{Class: codec.GraphClass}
	}
	data, err := codec.MarshalDocument(doc)
	if err != nil {
		return fmt.Errorf("repository: encode circuit: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO circuits (name, document) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET
		     document   = EXCLUDED.document,
		     revision   = circuits.revision + 1,
		     updated_at = NOW()`,
		name, data,
	)
	if err != nil {
		return fmt.Errorf("repository: save circuit: %w", err)
	}

	return tx.Commit(ctx)
}

// DeleteDocument deletes a circuit by name.
// No error if the circuit doesn't exist.
func (s *Store) DeleteDocument(ctx context.Context, name string) error {
	if name == "" {
		return repository.ErrEmptyName
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM circuits WHERE name = $1`, name); err != nil {
		return fmt.Errorf("repository: delete circuit: %w", err)
	}
	return nil
}

// ListCircuits returns all circuits ordered by name.
// Returns an empty slice (not nil) if none found.
func (s *Store) ListCircuits(ctx context.Context) ([]repository.CircuitInfo, error) {
	rows, err := s.db.Query(ctx,
		`SELECT name, revision, updated_at FROM circuits ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("repository: list circuits: %w", err)
	}
	defer rows.Close()

	circuits := []repository.CircuitInfo{}
	for rows.Next() {
		var c repository.CircuitInfo
		if err := rows.Scan(&c.Name, &c.Revision, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("repository: scan circuit: %w", err)
		}
		circuits = append(circuits, c)
	}
	return circuits, rows.Err()
}

// isNoRows checks if the error is a "no rows" error from pgx.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
