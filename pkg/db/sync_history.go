package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SyncStatus is the outcome of a remote write.
type SyncStatus string

const (
	SyncStatusOK     SyncStatus = "ok"
	SyncStatusFailed SyncStatus = "failed"
)

// SyncRecord represents a sync history record.
type SyncRecord struct {
	ID       int64
	Identity string
	Revision int64
	Status   SyncStatus
	Error    string
	SyncedAt time.Time
}

// Stats summarizes the sync history.
type Stats struct {
	TotalWrites  int
	FailedWrites int
	LastRevision int64
	LastSync     sql.NullString
	LastError    sql.NullString
}

// SyncHistory manages sync history operations.
type SyncHistory struct {
	conn *Connection
}

// NewSyncHistory creates a new SyncHistory instance.
func NewSyncHistory(conn *Connection) *SyncHistory {
	return &SyncHistory{conn: conn}
}

// RecordSync appends the outcome of one remote write.
func (s *SyncHistory) RecordSync(record SyncRecord) error {
	query := `
		INSERT INTO sync_history (identity, revision, status, error)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.conn.Exec(query,
		record.Identity,
		record.Revision,
		string(record.Status),
		record.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record sync: %w", err)
	}

	return nil
}

// GetRecent returns up to limit records for identity, newest first.
// An empty identity returns records for all identities.
func (s *SyncHistory) GetRecent(identity string, limit int) ([]SyncRecord, error) {
	query := `
		SELECT id, identity, revision, status, error, synced_at
		FROM sync_history
		WHERE (? = '' OR identity = ?)
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(query, identity, identity, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent sync records: %w", err)
	}
	defer rows.Close()

	var records []SyncRecord
	for rows.Next() {
		var record SyncRecord
		var status string

		if err := rows.Scan(
			&record.ID,
			&record.Identity,
			&record.Revision,
			&status,
			&record.Error,
			&record.SyncedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sync record: %w", err)
		}

		record.Status = SyncStatus(status)
		records = append(records, record)
	}

	return records, rows.Err()
}

// GetStats retrieves sync statistics for identity, or for all identities
// when identity is empty.
func (s *SyncHistory) GetStats(identity string) (*Stats, error) {
	var stats Stats

	err := s.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
		FROM sync_history WHERE (? = '' OR identity = ?)`,
		identity, identity,
	).Scan(&stats.TotalWrites, &stats.FailedWrites)
	if err != nil {
		return nil, fmt.Errorf("failed to get write counts: %w", err)
	}

	err = s.conn.QueryRow(`
		SELECT COALESCE(MAX(revision), 0), MAX(synced_at)
		FROM sync_history WHERE status = 'ok' AND (? = '' OR identity = ?)`,
		identity, identity,
	).Scan(&stats.LastRevision, &stats.LastSync)
	if err != nil {
		return nil, fmt.Errorf("failed to get last sync: %w", err)
	}

	err = s.conn.QueryRow(`
		SELECT error FROM sync_history
		WHERE status = 'failed' AND (? = '' OR identity = ?)
		ORDER BY id DESC LIMIT 1`,
		identity, identity,
	).Scan(&stats.LastError)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get last error: %w", err)
	}

	return &stats, nil
}

// DeleteHistory removes every record and metadata entry of identity.
// It returns the number of history records removed.
func (s *SyncHistory) DeleteHistory(identity string) (int64, error) {
	var removed int64
	err := s.conn.Transaction(func(tx *sql.Tx) error {
		result, err := tx.Exec(`DELETE FROM sync_history WHERE identity = ?`, identity)
		if err != nil {
			return fmt.Errorf("failed to delete sync history: %w", err)
		}
		if removed, err = result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if _, err := tx.Exec(`DELETE FROM sync_metadata WHERE key LIKE ?`, identity+":%"); err != nil {
			return fmt.Errorf("failed to delete sync metadata: %w", err)
		}
		return nil
	})
	return removed, err
}

// MetadataKey scopes a metadata name to identity.
func MetadataKey(identity, name string) string {
	return identity + ":" + name
}

// GetMetadata retrieves a metadata value.
func (s *SyncHistory) GetMetadata(key string) (string, error) {
	query := `SELECT value FROM sync_metadata WHERE key = ?`

	var value string
	err := s.conn.QueryRow(query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}

	return value, nil
}

// SetMetadata sets a metadata value.
func (s *SyncHistory) SetMetadata(key, value string) error {
	query := `
		INSERT INTO sync_metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := s.conn.Exec(query, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}

	return nil
}
