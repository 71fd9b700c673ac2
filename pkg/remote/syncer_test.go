package remote

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/model"
)

type changeRecorder struct {
	mu    sync.Mutex
	snaps []*model.Snapshot
}

func (r *changeRecorder) record(s *model.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func snapshotWithBudget(amount string) *model.Snapshot {
	s := model.EmptySnapshot()
	s.Budgets["food"] = decimal.RequireFromString(amount)
	return s
}

func TestKeyFor(t *testing.T) {
	tests := []struct {
		identity string
		expected string
	}{
		{"Alice", "users/alice"},
		{" bob ", "users/bob"},
	}
	for _, tt := range tests {
		if got := KeyFor(tt.identity); got != tt.expected {
			t.Errorf("KeyFor(%q) = %q, expected %q", tt.identity, got, tt.expected)
		}
	}
	if got := ChannelFor("users/alice"); got != "users/alice:changes" {
		t.Errorf("ChannelFor() = %q", got)
	}
}

func TestSyncerInactive(t *testing.T) {
	ctx := context.Background()
	s := NewSyncer(NewMemoryBackend(), nil)

	if s.Active() {
		t.Error("new syncer should be inactive")
	}
	if _, err := s.Save(ctx, model.EmptySnapshot()); !errors.Is(err, ErrInactive) {
		t.Errorf("Save() error = %v, expected ErrInactive", err)
	}
	if _, err := s.Load(ctx); !errors.Is(err, ErrInactive) {
		t.Errorf("Load() error = %v, expected ErrInactive", err)
	}

	if err := s.SetUser(ctx, "", nil); err != nil || s.Active() {
		t.Errorf("empty identity should leave the syncer inactive, err = %v", err)
	}

	unconfigured := NewSyncer(nil, nil)
	if err := unconfigured.SetUser(ctx, "alice", nil); err != nil || unconfigured.Active() || unconfigured.Configured() {
		t.Errorf("syncer without backend should never be active, err = %v", err)
	}
}

func TestSyncerSaveLoad(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	s := NewSyncer(backend, nil)
	if err := s.SetUser(ctx, "Alice", nil); err != nil {
		t.Fatalf("SetUser() failed: %v", err)
	}
	if s.Identity() != "alice" || !s.Active() {
		t.Fatalf("Identity() = %q, Active() = %v", s.Identity(), s.Active())
	}

	if _, err := s.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, expected ErrNotFound", err)
	}

	snap := snapshotWithBudget("80")
	rev, err := s.Save(ctx, snap)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if rev != 1 {
		t.Errorf("first revision = %d, expected 1", rev)
	}
	if snap.Origin != "" || snap.Revision != 0 {
		t.Error("Save() should not modify the caller's snapshot")
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got.Origin != s.Origin() || got.Revision != 1 || got.LastUpdated == nil {
		t.Errorf("remote snapshot not tagged: origin=%q revision=%d lastUpdated=%v", got.Origin, got.Revision, got.LastUpdated)
	}
	if got.SavedAt != nil {
		t.Error("remote snapshot should not carry savedAt")
	}
	if !got.Budgets["food"].Equal(decimal.NewFromInt(80)) {
		t.Errorf("Budgets = %v", got.Budgets)
	}

	if _, err := backend.Get(ctx, "users/alice"); err != nil {
		t.Errorf("snapshot should be stored under users/alice: %v", err)
	}
}

func TestSyncerSuppressesOwnWrites(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	var a, b changeRecorder
	devA := NewSyncer(backend, nil)
	devB := NewSyncer(backend, nil)
	devA.SetUser(ctx, "alice", a.record)
	devB.SetUser(ctx, "ALICE", b.record)

	if _, err := devA.Save(ctx, snapshotWithBudget("10")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	if a.count() != 0 {
		t.Errorf("writer received its own change %d times", a.count())
	}
	if b.count() != 1 {
		t.Fatalf("other device received %d changes, expected 1", b.count())
	}
	if !b.snaps[0].Budgets["food"].Equal(decimal.NewFromInt(10)) {
		t.Errorf("other device got %v", b.snaps[0].Budgets)
	}

	// B's next write must be newer than what it has seen.
	rev, _ := devB.Save(ctx, snapshotWithBudget("20"))
	if rev != 2 {
		t.Errorf("revision after observing 1 = %d, expected 2", rev)
	}
	if a.count() != 1 {
		t.Errorf("device A received %d changes, expected 1", a.count())
	}
}

func TestSyncerDropsStaleChanges(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	var rec changeRecorder
	s := NewSyncer(backend, nil)
	s.SetUser(ctx, "alice", rec.record)

	publish := func(rev int64, origin string) {
		snap := model.EmptySnapshot()
		snap.Revision = rev
		snap.Origin = origin
		data, _ := snap.Encode()
		backend.Set(ctx, "users/alice", data)
	}

	publish(5, "other")
	publish(3, "other")
	publish(5, "third")
	publish(6, s.Origin())

	if rec.count() != 2 {
		t.Fatalf("applied %d changes, expected 2", rec.count())
	}
	if rec.snaps[0].Revision != 5 || rec.snaps[1].Origin != "third" {
		t.Errorf("unexpected changes applied: %+v", rec.snaps)
	}

	backend.Set(ctx, "users/alice", []byte("not json"))
	if rec.count() != 2 {
		t.Error("undecodable change should be ignored")
	}
}

func TestSyncerAppliesChangesFromDeviceBehind(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	var a changeRecorder
	devA := NewSyncer(backend, nil)
	devA.SetUser(ctx, "alice", a.record)
	for _, amount := range []string{"10", "20", "30"} {
		if _, err := devA.Save(ctx, snapshotWithBudget(amount)); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}

	// B never loaded, so its counter starts behind A's.
	devB := NewSyncer(backend, nil)
	devB.SetUser(ctx, "alice", nil)
	rev, err := devB.Save(ctx, snapshotWithBudget("99"))
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if rev != 1 {
		t.Fatalf("B wrote revision %d, expected 1", rev)
	}

	if a.count() != 1 {
		t.Fatalf("device A applied %d changes, expected 1", a.count())
	}
	if !a.snaps[0].Budgets["food"].Equal(decimal.NewFromInt(99)) {
		t.Errorf("device A got %v", a.snaps[0].Budgets)
	}

	// A's next write still outranks everything it has seen.
	next, _ := devA.Save(ctx, snapshotWithBudget("40"))
	if next != 4 {
		t.Errorf("A's revision after applying B's change = %d, expected 4", next)
	}
}

func TestSyncerRebindStopsPreviousSubscription(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	var rec changeRecorder
	s := NewSyncer(backend, nil)
	s.SetUser(ctx, "alice", rec.record)
	s.SetUser(ctx, "bob", rec.record)

	other := NewSyncer(backend, nil)
	other.SetUser(ctx, "alice", nil)
	other.Save(ctx, model.EmptySnapshot())
	if rec.count() != 0 {
		t.Errorf("old subscription still delivering: %d", rec.count())
	}

	other.SetUser(ctx, "bob", nil)
	other.Save(ctx, model.EmptySnapshot())
	if rec.count() != 1 {
		t.Errorf("new subscription delivered %d changes, expected 1", rec.count())
	}

	s.Disconnect()
	other.Save(ctx, model.EmptySnapshot())
	if rec.count() != 1 || s.Active() || s.Identity() != "" {
		t.Error("Disconnect() should stop delivery and unbind")
	}
}
