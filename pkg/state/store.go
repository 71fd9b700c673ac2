// Package state holds the budget planner's in-memory domain state. The Store
// is the single owner of transactions, budgets, goals, debts and settings;
// every mutation goes through it, notifies observers and hands the resulting
// snapshot to a Persister.
package state

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/category"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/model"
)

// Observer is called after every state change.
type Observer func(s *Store)

// Persister receives a full snapshot after every local mutation.
type Persister interface {
	Persist(snap *model.Snapshot)
}

// PersisterFunc adapts a function to the Persister interface.
type PersisterFunc func(snap *model.Snapshot)

// Persist calls f(snap).
func (f PersisterFunc) Persist(snap *model.Snapshot) { f(snap) }

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps and windows.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides entity ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithPersister sets the persister invoked after each mutation.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithCatalog sets the category catalog.
func WithCatalog(c *category.Catalog) Option {
	return func(s *Store) { s.catalog = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

type subscription struct {
	id uint64
	fn Observer
}

// Store is the authoritative in-memory state.
type Store struct {
	mu           sync.RWMutex
	transactions []model.Transaction
	budgets      map[string]decimal.Decimal
	goals        []model.Goal
	debts        []model.Debt
	settings     model.Settings

	// dispatchMu keeps notification and persistence in mutation order.
	dispatchMu sync.Mutex

	subMu     sync.Mutex
	subs      []subscription
	nextSubID uint64
	persistMu sync.RWMutex
	persister Persister
	now       func() time.Time
	newID     func() string
	catalog   *category.Catalog
	logger    *slog.Logger
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		transactions: []model.Transaction{},
		budgets:      map[string]decimal.Decimal{},
		goals:        []model.Goal{},
		debts:        []model.Debt{},
		settings:     model.DefaultSettings(),
		now:          time.Now,
		newID:        generateID,
		catalog:      category.Default(),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// generateID returns a UUIDv7: a millisecond timestamp prefix followed by
// random bits. Collisions are not checked.
func generateID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SetPersister replaces the persister. A nil persister disables persistence.
func (s *Store) SetPersister(p Persister) {
	s.persistMu.Lock()
	s.persister = p
	s.persistMu.Unlock()
}

// Catalog returns the category catalog.
func (s *Store) Catalog() *category.Catalog {
	return s.catalog
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.subMu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// notify runs every observer synchronously. It must be called without s.mu
// held so observers can query the store.
func (s *Store) notify() {
	s.subMu.Lock()
	subs := append([]subscription(nil), s.subs...)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(s)
	}
}

func (s *Store) persist(snap *model.Snapshot) {
	s.persistMu.RLock()
	p := s.persister
	s.persistMu.RUnlock()
	if p != nil {
		p.Persist(snap)
	}
}

// mutate applies fn under the write lock, then notifies observers and
// dispatches the new snapshot.
func (s *Store) mutate(fn func()) {
	s.mutateIf(func() bool {
		fn()
		return true
	})
}

// mutateIf is like mutate but skips notification and persistence when fn
// reports that nothing changed. Observers must not mutate the store.
func (s *Store) mutateIf(fn func() bool) bool {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return false
	}
	snap := s.snapshotLocked()
	s.dispatchMu.Lock()
	s.mu.Unlock()

	s.notify()
	s.persist(snap)
	s.dispatchMu.Unlock()
	return true
}

// Init seeds the store from snap (nil means empty) and notifies once.
// It does not persist.
func (s *Store) Init(snap *model.Snapshot) {
	s.mu.Lock()
	s.loadLocked(snap)
	s.dispatchMu.Lock()
	s.mu.Unlock()

	s.notify()
	s.dispatchMu.Unlock()
}

// Replace overwrites the whole state with an externally produced snapshot,
// such as a remote update, and notifies once. It does not persist.
func (s *Store) Replace(snap *model.Snapshot) {
	s.Init(snap)
}

func (s *Store) loadLocked(snap *model.Snapshot) {
	if snap == nil {
		snap = model.EmptySnapshot()
	} else {
		snap = snap.Clone()
	}
	s.transactions = snap.Transactions
	s.budgets = snap.Budgets
	s.goals = snap.Goals
	s.debts = snap.Debts
	s.settings = snap.Settings
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() *model.Snapshot {
	snap := &model.Snapshot{
		Transactions: s.transactions,
		Budgets:      s.budgets,
		Goals:        s.goals,
		Debts:        s.debts,
		Settings:     s.settings,
	}
	return snap.Clone()
}

// Transactions returns a copy of all transactions, most recent first.
func (s *Store) Transactions() []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Transaction{}, s.transactions...)
}

// Goals returns a copy of all goals.
func (s *Store) Goals() []model.Goal {
	return s.Snapshot().Goals
}

// Debts returns a copy of all debts.
func (s *Store) Debts() []model.Debt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Debt{}, s.debts...)
}

// Budgets returns a copy of the budget mapping.
func (s *Store) Budgets() map[string]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneBudgets(s.budgets)
}

// Settings returns the current settings.
func (s *Store) Settings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Transaction returns the transaction with the given ID.
func (s *Store) Transaction(id string) (model.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.transactions, id, txID); i >= 0 {
		return s.transactions[i], true
	}
	return model.Transaction{}, false
}

// Goal returns the goal with the given ID.
func (s *Store) Goal(id string) (model.Goal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.goals, id, goalID); i >= 0 {
		return s.goals[i], true
	}
	return model.Goal{}, false
}

// Debt returns the debt with the given ID.
func (s *Store) Debt(id string) (model.Debt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.debts, id, debtID); i >= 0 {
		return s.debts[i], true
	}
	return model.Debt{}, false
}

func txID(t model.Transaction) string { return t.ID }
func goalID(g model.Goal) string      { return g.ID }
func debtID(d model.Debt) string      { return d.ID }

func indexOf[T any](items []T, id string, key func(T) string) int {
	for i, item := range items {
		if key(item) == id {
			return i
		}
	}
	return -1
}

func removeID[T any](items []T, id string, key func(T) string) []T {
	out := items[:0:0]
	for _, item := range items {
		if key(item) != id {
			out = append(out, item)
		}
	}
	return out
}
