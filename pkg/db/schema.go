// Package db provides SQLite storage for mirror history and sync metadata.
//
// The history database is an audit log only: the sync engine decides whether
// a mirror exists by searching the ledger itself, never by consulting this
// database. Deleting the file loses the stats, not correctness.
package db

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Mirror history table
-- One row per mirror entry this daemon created, for auditing and stats.
CREATE TABLE IF NOT EXISTS mirror_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    mirror_type TEXT NOT NULL,         -- 'deposit', 'spliit_push' or 'spliit_mirror'
    source_id TEXT NOT NULL,           -- ID of the source transaction or expense
    title TEXT NOT NULL,
    amount INTEGER NOT NULL,           -- signed amount in minor currency units
    notes TEXT NOT NULL,               -- the mirror's notes signature
    entry_date TEXT NOT NULL,          -- YYYY-MM-DD
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_mirror_history_type_source
    ON mirror_history(mirror_type, source_id);

CREATE INDEX IF NOT EXISTS idx_mirror_history_date
    ON mirror_history(entry_date);

-- Sync metadata table
-- Stores key-value metadata about sync operations
CREATE TABLE IF NOT EXISTS sync_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(Schema); err != nil {
		return err
	}
	return nil
}
