package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"logicsim/internal/repository"
)

// Store implements repository.Repository using PostgreSQL via pgx.
type Store struct {
	db    *pgxpool.Pool
	owned bool
}

var _ repository.Repository = (*Store)(nil)

// New creates a Store backed by the given pgx connection pool.
// The caller keeps ownership of the pool.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Open connects to databaseURL, creates the schema and returns a Store that
// closes its pool on Close.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("repository: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repository: ping postgres: %w", err)
	}

	s := &Store{db: pool, owned: true}
	if err := s.CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repository: create schema: %w", err)
	}
	return s, nil
}

// Close releases the pool when the Store opened it
func (s *Store) Close() error {
	if s.owned {
		s.db.Close()
	}
	return nil
}
