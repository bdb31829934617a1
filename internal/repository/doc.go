// Package repository defines the storage interface for circuit documents.
//
// A circuit is persisted as one serialized document (see package codec) under
// a name. Each save replaces the whole document in a single transaction and
// increments the circuit's revision, so a reader never observes a half
// written graph.
//
// # Implementations
//
// The sqlite subpackage stores documents in SQLite with WAL mode. The
// postgres subpackage stores them as JSONB through a pgx connection pool.
// Both create their schema on startup.
//
// # Testing
//
// The sqlite repository is tested with in-memory databases. The postgres
// tests run only when LOGICSIM_TEST_DATABASE_URL points at a server.
package repository
