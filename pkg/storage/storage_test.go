package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/db"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/model"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	dir := t.TempDir()

	bolt, err := OpenBolt(filepath.Join(dir, "bolt", "budget.bolt"))
	if err != nil {
		t.Fatalf("OpenBolt() failed: %v", err)
	}
	t.Cleanup(func() { bolt.Close() })

	conn, err := db.Open(filepath.Join(dir, "budget.db"))
	if err != nil {
		t.Fatalf("db.Open() failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return map[string]Backend{
		"bolt":   bolt,
		"sqlite": NewSQLiteBackend(conn),
	}
}

func TestBackendContract(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := b.Get("missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(missing) error = %v, expected ErrNotFound", err)
			}

			if err := b.Put("budgetPlannerData:alice", []byte(`{"a":1}`)); err != nil {
				t.Fatalf("Put() failed: %v", err)
			}
			if err := b.Put("budgetPlannerData:alice", []byte(`{"a":2}`)); err != nil {
				t.Fatalf("Put() overwrite failed: %v", err)
			}
			b.Put("budgetPlannerData", []byte(`{}`))
			b.Put("other", []byte(`{}`))

			data, err := b.Get("budgetPlannerData:alice")
			if err != nil || string(data) != `{"a":2}` {
				t.Errorf("Get() = %s, %v", data, err)
			}

			keys, err := b.Keys(KeyPrefix)
			if err != nil {
				t.Fatalf("Keys() failed: %v", err)
			}
			if len(keys) != 2 || keys[0] != "budgetPlannerData" || keys[1] != "budgetPlannerData:alice" {
				t.Errorf("Keys() = %v", keys)
			}

			if err := b.Delete("budgetPlannerData:alice"); err != nil {
				t.Fatalf("Delete() failed: %v", err)
			}
			if err := b.Delete("budgetPlannerData:alice"); err != nil {
				t.Errorf("Delete() of a missing key should succeed, got %v", err)
			}
			if _, err := b.Get("budgetPlannerData:alice"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() after Delete error = %v, expected ErrNotFound", err)
			}
		})
	}
}

func TestKeyFor(t *testing.T) {
	tests := []struct {
		identity string
		expected string
	}{
		{"", "budgetPlannerData"},
		{"  ", "budgetPlannerData"},
		{"Alice", "budgetPlannerData:alice"},
		{"BOB@Example.com", "budgetPlannerData:bob@example.com"},
	}

	for _, tt := range tests {
		if got := KeyFor(tt.identity); got != tt.expected {
			t.Errorf("KeyFor(%q) = %q, expected %q", tt.identity, got, tt.expected)
		}
	}
}

func TestLocalSaveLoad(t *testing.T) {
	saved := time.Date(2026, time.October, 19, 8, 30, 0, 0, time.UTC)

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			l := NewLocal(b, nil)
			l.now = func() time.Time { return saved }
			l.SetUser("Alice")

			if _, err := l.Load(); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Load() on empty store error = %v, expected ErrNotFound", err)
			}

			snap := model.EmptySnapshot()
			snap.Budgets["food"] = decimal.RequireFromString("250.75")
			snap.Settings.DarkMode = true
			if err := l.SaveLocal(snap); err != nil {
				t.Fatalf("SaveLocal() failed: %v", err)
			}
			if snap.SavedAt != nil || snap.Version != 0 {
				t.Error("SaveLocal() should not stamp the caller's snapshot")
			}

			got, err := l.Load()
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			if got.Version != model.SnapshotVersion {
				t.Errorf("Version = %d, expected %d", got.Version, model.SnapshotVersion)
			}
			if got.SavedAt == nil || !got.SavedAt.Equal(saved) {
				t.Errorf("SavedAt = %v, expected %v", got.SavedAt, saved)
			}
			if !got.Budgets["food"].Equal(decimal.RequireFromString("250.75")) || !got.Settings.DarkMode {
				t.Errorf("round trip lost data: %+v", got)
			}

			l.SetUser("")
			if _, err := l.Load(); !errors.Is(err, ErrNotFound) {
				t.Errorf("anonymous namespace should be separate, got %v", err)
			}

			l.SetUser("ALICE")
			if err := l.Clear(); err != nil {
				t.Fatalf("Clear() failed: %v", err)
			}
			if _, err := l.Load(); !errors.Is(err, ErrNotFound) {
				t.Errorf("Load() after Clear error = %v, expected ErrNotFound", err)
			}
		})
	}
}

func TestLocalLoadCorrupt(t *testing.T) {
	b := backends(t)["bolt"]
	l := NewLocal(b, nil)
	b.Put(KeyPrefix, []byte("{not json"))

	_, err := l.Load()
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Load() of a corrupt snapshot error = %v, expected a decode error", err)
	}
}

func TestLocalUsers(t *testing.T) {
	b := backends(t)["sqlite"]
	l := NewLocal(b, nil)
	for _, id := range []string{"", "bob", "alice"} {
		l.SetUser(id)
		if err := l.SaveLocal(model.EmptySnapshot()); err != nil {
			t.Fatalf("SaveLocal() failed: %v", err)
		}
	}

	users, err := l.Users()
	if err != nil {
		t.Fatalf("Users() failed: %v", err)
	}
	if len(users) != 3 || users[0] != "" || users[1] != "alice" || users[2] != "bob" {
		t.Errorf("Users() = %q", users)
	}
}
