package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite schema snapshot store.
type DB struct {
	conn *sql.DB
	Path string
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS tables (
	sys_id             TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	label              TEXT NOT NULL DEFAULT '',
	parent_id          TEXT NOT NULL DEFAULT '',
	parent_name        TEXT NOT NULL DEFAULT '',
	category           TEXT NOT NULL DEFAULT '',
	created_by         TEXT NOT NULL DEFAULT '',
	created_at         INTEGER NOT NULL DEFAULT 0,
	record_count       INTEGER NOT NULL DEFAULT 0,
	custom_field_count INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_tables_name ON tables(name);
CREATE INDEX IF NOT EXISTS idx_tables_parent ON tables(parent_id);

CREATE TABLE IF NOT EXISTS reference_fields (
	sys_id       TEXT PRIMARY KEY,
	source_table TEXT NOT NULL,
	column_name  TEXT NOT NULL,
	target_table TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_refs_source ON reference_fields(source_table);
CREATE INDEX IF NOT EXISTS idx_refs_target ON reference_fields(target_table);

CREATE TABLE IF NOT EXISTS relationships (
	sys_id       TEXT PRIMARY KEY,
	parent_table TEXT NOT NULL,
	child_table  TEXT NOT NULL,
	rel_type     TEXT NOT NULL DEFAULT 'related_to',
	rel_count    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_rels_parent ON relationships(parent_table);
`

// Open opens a snapshot database, creating the schema on first use, with
// WAL mode and foreign keys enabled.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL lets the viewer read while an import runs
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := conn.Exec(schemaDDL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &DB{conn: conn, Path: path}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries.
func (d *DB) Conn() *sql.DB {
	return d.conn
}
