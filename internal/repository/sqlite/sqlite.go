package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"logicsim/internal/codec"
	"logicsim/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Repository = (*Repository)(nil)

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every connection to :memory: is a separate database
	if isMemory(dbPath) {
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func isMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS circuits (
		name TEXT PRIMARY KEY,
		document JSON NOT NULL,
		revision INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_circuits_updated ON circuits(updated_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// LoadDocument loads a circuit document by name
func (r *Repository) LoadDocument(ctx context.Context, name string) (*codec.Document, error) {
	if name == "" {
		return nil, repository.ErrEmptyName
	}

	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT document FROM circuits WHERE name = ?`, name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query circuit: %w", err)
	}

	doc, err := codec.UnmarshalDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode circuit %s: %w", name, err)
	}
	return doc, nil
}

// SaveDocument replaces a circuit document in one transaction
func (r *Repository) SaveDocument(ctx context.Context, name string, doc *codec.Document) error {
	if name == "" {
		return repository.ErrEmptyName
	}

	data, err := documentArg(doc)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO circuits (name, document, revision, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			document = excluded.document,
			revision = circuits.revision + 1,
			updated_at = excluded.updated_at
	`, name, data, now, now)
	if err != nil {
		return fmt.Errorf("failed to save circuit: %w", err)
	}

	return tx.Commit()
}

// DeleteDocument removes a circuit
func (r *Repository) DeleteDocument(ctx context.Context, name string) error {
	if name == "" {
		return repository.ErrEmptyName
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM circuits WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete circuit: %w", err)
	}
	return nil
}

// ListCircuits returns every stored circuit ordered by name
func (r *Repository) ListCircuits(ctx context.Context) ([]repository.CircuitInfo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+circuitColumns+` FROM circuits ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query circuits: %w", err)
	}
	defer rows.Close()

	circuits := []repository.CircuitInfo{}
	for rows.Next() {
		var row circuitRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan circuit: %w", err)
		}
		circuits = append(circuits, row.toInfo())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating circuits: %w", err)
	}
	return circuits, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
