package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "budget.db")
	conn, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer conn.Close()

	if conn.Path() != path {
		t.Errorf("Path() = %q, expected %q", conn.Path(), path)
	}

	var mode string
	if err := conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil || mode != "wal" {
		t.Errorf("journal_mode = %q, %v; expected wal", mode, err)
	}
}

func TestTransaction(t *testing.T) {
	conn := openTestDB(t)
	insert := func(tx *sql.Tx, key string) error {
		_, err := tx.Exec(`INSERT INTO snapshots (key, data) VALUES (?, ?)`, key, []byte(`{}`))
		return err
	}
	count := func() int {
		var n int
		if err := conn.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&n); err != nil {
			t.Fatalf("count failed: %v", err)
		}
		return n
	}

	boom := errors.New("boom")
	err := conn.Transaction(func(tx *sql.Tx) error {
		if err := insert(tx, "budgetPlannerData:alice"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction() error = %v, expected boom", err)
	}
	if n := count(); n != 0 {
		t.Errorf("rolled back transaction left %d rows", n)
	}

	err = conn.Transaction(func(tx *sql.Tx) error {
		return insert(tx, "budgetPlannerData:bob")
	})
	if err != nil {
		t.Fatalf("Transaction() failed: %v", err)
	}
	if n := count(); n != 1 {
		t.Errorf("committed transaction left %d rows, expected 1", n)
	}
}
