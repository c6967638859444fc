// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite?
// It is a pure-Go translation of the SQLite sources — no CGo, no C compiler,
// painless cross-compilation. The driver registers itself with database/sql
// under the name "sqlite" via the blank import below.
//
// The uniqueness rules that matter to the domain all live here as UNIQUE
// constraints: users.email, users.username, and the assignment triple
// (submitter_id, task, admin_id). Under a race, the constraint is the sole
// serialization mechanism — the losing writer gets a conflict error, never a
// duplicate row.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements both repository
// interfaces. The server owns the lifecycle: New at startup, Close on
// shutdown.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests for a throwaway in-memory database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Surface a bad path or permissions problem now, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight — the normal
	// state of affairs for a web server.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; assignments reference users.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this
// idempotent — safe to run on every startup.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			is_admin      INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_is_admin ON users(is_admin);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// The UNIQUE index on the triple is load-bearing: it is what turns two
	// concurrent submits for the same (submitter, task, admin) into one
	// winner and one conflict.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS assignments (
			id           TEXT PRIMARY KEY,
			submitter_id TEXT NOT NULL REFERENCES users(id),
			admin_id     TEXT NOT NULL REFERENCES users(id),
			task         TEXT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'Pending',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (submitter_id, task, admin_id)
		);
		CREATE INDEX IF NOT EXISTS idx_assignments_admin_id ON assignments(admin_id);
	`)
	if err != nil {
		return fmt.Errorf("creating assignments table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
//
// modernc.org/sqlite surfaces constraint failures as a generic driver error
// carrying SQLite's own message ("UNIQUE constraint failed: <table>.<col>"),
// so matching on the message is the practical check. constraint narrows the
// match to a specific column when the table has several unique indexes.
func isUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	return constraint == "" || strings.Contains(msg, constraint)
}
