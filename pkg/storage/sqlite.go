package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shunichi-ikebuchi/budget-planner/pkg/db"
)

// SQLiteBackend stores snapshots in the snapshots table of a shared
// database connection. The caller owns the connection.
type SQLiteBackend struct {
	conn *db.Connection
}

// NewSQLiteBackend creates a backend on conn.
func NewSQLiteBackend(conn *db.Connection) *SQLiteBackend {
	return &SQLiteBackend{conn: conn}
}

// Get returns the value stored under key.
func (s *SQLiteBackend) Get(key string) ([]byte, error) {
	var data []byte
	err := s.conn.QueryRow(`SELECT data FROM snapshots WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return data, nil
}

// Put stores data under key.
func (s *SQLiteBackend) Put(key string, data []byte) error {
	query := `
		INSERT INTO snapshots (key, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.conn.Exec(query, key, data); err != nil {
		return fmt.Errorf("failed to put snapshot: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *SQLiteBackend) Delete(key string) error {
	if _, err := s.conn.Exec(`DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Keys lists keys starting with prefix.
func (s *SQLiteBackend) Keys(prefix string) ([]string, error) {
	rows, err := s.conn.Query(`SELECT key FROM snapshots WHERE substr(key, 1, ?) = ? ORDER BY key`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close is a no-op; the connection is closed by its owner.
func (s *SQLiteBackend) Close() error {
	return nil
}
