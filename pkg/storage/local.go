package storage

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shunichi-ikebuchi/budget-planner/pkg/model"
)

// KeyPrefix is the storage key of the anonymous snapshot and the prefix of
// per-user keys.
const KeyPrefix = "budgetPlannerData"

// KeyFor returns the storage key for identity.
func KeyFor(identity string) string {
	identity = strings.ToLower(strings.TrimSpace(identity))
	if identity == "" {
		return KeyPrefix
	}
	return KeyPrefix + ":" + identity
}

// Local reads and writes the current user's snapshot through a Backend.
type Local struct {
	backend Backend
	now     func() time.Time
	logger  *slog.Logger

	mu  sync.RWMutex
	key string
}

// NewLocal creates a Local bound to the anonymous key.
func NewLocal(backend Backend, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{
		backend: backend,
		now:     time.Now,
		logger:  logger,
		key:     KeyPrefix,
	}
}

// SetUser namespaces subsequent operations to identity.
func (l *Local) SetUser(identity string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.key = KeyFor(identity)
}

// Key returns the current storage key.
func (l *Local) Key() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.key
}

// SaveLocal stamps snap with the schema version and save time and writes it.
// snap itself is not modified.
func (l *Local) SaveLocal(snap *model.Snapshot) error {
	out := snap.Clone()
	now := l.now()
	out.Version = model.SnapshotVersion
	out.SavedAt = &now

	data, err := out.Encode()
	if err != nil {
		return err
	}

	key := l.Key()
	if err := l.backend.Put(key, data); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", key, err)
	}
	l.logger.Debug("Saved local snapshot", "key", key, "bytes", len(data))
	return nil
}

// Load returns the stored snapshot, or ErrNotFound.
func (l *Local) Load() (*model.Snapshot, error) {
	key := l.Key()
	data, err := l.backend.Get(key)
	if err != nil {
		return nil, err
	}

	snap, err := model.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}
	return snap, nil
}

// Clear removes the stored snapshot.
func (l *Local) Clear() error {
	key := l.Key()
	if err := l.backend.Delete(key); err != nil {
		return fmt.Errorf("failed to clear snapshot %s: %w", key, err)
	}
	return nil
}

// Users lists the identities that have a stored snapshot. The anonymous
// snapshot is reported as the empty identity.
func (l *Local) Users() ([]string, error) {
	keys, err := l.backend.Keys(KeyPrefix)
	if err != nil {
		return nil, err
	}

	var users []string
	for _, k := range keys {
		switch {
		case k == KeyPrefix:
			users = append(users, "")
		case strings.HasPrefix(k, KeyPrefix+":"):
			users = append(users, strings.TrimPrefix(k, KeyPrefix+":"))
		}
	}
	return users, nil
}
