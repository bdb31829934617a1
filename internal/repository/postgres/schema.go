package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS circuits (
    name       TEXT PRIMARY KEY,
    document   JSONB NOT NULL DEFAULT '{}',
    revision   BIGINT NOT NULL DEFAULT 1,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_circuits_updated ON circuits(updated_at);
`

// CreateSchema creates the circuits table if it doesn't exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the circuits table.
func (s *Store) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS circuits;`)
	return err
}
