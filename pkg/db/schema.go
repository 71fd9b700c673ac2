// Package db provides SQLite storage for local snapshots and remote sync history.
package db

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Snapshot table
-- Holds one JSON snapshot per storage key (budgetPlannerData[:user])
CREATE TABLE IF NOT EXISTS snapshots (
    key TEXT PRIMARY KEY,
    data BLOB NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Sync history table
-- One row per attempted remote write
CREATE TABLE IF NOT EXISTS sync_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    identity TEXT NOT NULL,            -- lower-cased user identity
    revision INTEGER NOT NULL,         -- snapshot revision that was written
    status TEXT NOT NULL,              -- 'ok' or 'failed'
    error TEXT NOT NULL DEFAULT '',
    synced_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sync_history_identity
    ON sync_history(identity, id);

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
