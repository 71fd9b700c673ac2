package remote

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/model"
)

// ChangeFunc receives snapshots written by other processes.
type ChangeFunc func(*model.Snapshot)

// Syncer binds a Backend to one user at a time.
//
// Every snapshot written by a Syncer carries its origin token and a revision
// one greater than the newest revision it has seen. Inbound changes carrying
// the Syncer's own origin are dropped, as are changes whose revision is not
// newer than the last one seen from the same origin. Revisions of different
// origins are never compared.
type Syncer struct {
	backend Backend
	origin  string
	now     func() time.Time
	logger  *slog.Logger

	mu       sync.Mutex
	identity string
	key      string
	onChange ChangeFunc
	stop     func()
	gen      uint64
	revision int64
	seen     map[string]int64
}

// NewSyncer creates an unbound Syncer. A nil backend yields a Syncer that is
// never active.
func NewSyncer(backend Backend, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		backend: backend,
		origin:  uuid.NewString(),
		now:     time.Now,
		logger:  logger,
	}
}

// Origin returns the token stamped on this Syncer's writes.
func (s *Syncer) Origin() string {
	return s.origin
}

// Configured reports whether a backend is available.
func (s *Syncer) Configured() bool {
	return s.backend != nil
}

// SetUser binds the Syncer to identity and subscribes to its changes,
// replacing any previous binding. An empty identity only disconnects.
func (s *Syncer) SetUser(ctx context.Context, identity string, onChange ChangeFunc) error {
	s.Disconnect()

	identity = strings.ToLower(strings.TrimSpace(identity))
	if identity == "" || s.backend == nil {
		return nil
	}
	key := KeyFor(identity)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	stop, err := s.backend.Watch(ctx, key, func(data []byte) {
		s.handle(gen, data)
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", key, err)
	}

	s.mu.Lock()
	if s.gen != gen {
		// Rebound concurrently.
		s.mu.Unlock()
		stop()
		return nil
	}
	s.identity = identity
	s.key = key
	s.onChange = onChange
	s.stop = stop
	s.revision = 0
	s.seen = map[string]int64{}
	s.mu.Unlock()

	s.logger.Info("Remote sync bound", "key", key)
	return nil
}

func (s *Syncer) handle(gen uint64, data []byte) {
	snap, err := model.DecodeSnapshot(data)
	if err != nil {
		s.logger.Warn("Ignoring undecodable remote change", "error", err)
		return
	}

	s.mu.Lock()
	if gen != s.gen || s.onChange == nil {
		s.mu.Unlock()
		return
	}
	if snap.Origin == s.origin {
		s.mu.Unlock()
		return
	}
	if last, ok := s.seen[snap.Origin]; ok && snap.Origin != "" && snap.Revision <= last {
		s.mu.Unlock()
		s.logger.Debug("Ignoring stale remote change", "revision", snap.Revision, "origin", snap.Origin)
		return
	}
	s.observeLocked(snap)
	fn := s.onChange
	s.mu.Unlock()

	s.logger.Debug("Applying remote change", "revision", snap.Revision, "origin", snap.Origin)
	fn(snap)
}

// Save overwrites the remote snapshot with snap and returns the revision it
// was written with. snap itself is not modified.
func (s *Syncer) Save(ctx context.Context, snap *model.Snapshot) (int64, error) {
	s.mu.Lock()
	if s.key == "" {
		s.mu.Unlock()
		return 0, ErrInactive
	}
	s.revision++
	rev := s.revision
	key := s.key
	s.mu.Unlock()

	out := snap.Clone()
	now := s.now()
	out.Version = 0
	out.SavedAt = nil
	out.LastUpdated = &now
	out.Revision = rev
	out.Origin = s.origin

	data, err := out.Encode()
	if err != nil {
		return rev, err
	}
	if err := s.backend.Set(ctx, key, data); err != nil {
		return rev, err
	}
	return rev, nil
}

// Load fetches the remote snapshot once.
func (s *Syncer) Load(ctx context.Context) (*model.Snapshot, error) {
	s.mu.Lock()
	key := s.key
	s.mu.Unlock()
	if key == "" {
		return nil, ErrInactive
	}

	data, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	snap, err := model.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}

	s.mu.Lock()
	if s.key == key {
		s.observeLocked(snap)
	}
	s.mu.Unlock()
	return snap, nil
}

// observeLocked records snap as seen and keeps the local revision ahead of it.
func (s *Syncer) observeLocked(snap *model.Snapshot) {
	if snap.Origin != "" && snap.Origin != s.origin {
		if last, ok := s.seen[snap.Origin]; !ok || snap.Revision > last {
			s.seen[snap.Origin] = snap.Revision
		}
	}
	if snap.Revision > s.revision {
		s.revision = snap.Revision
	}
}

// Active reports whether a user is bound.
func (s *Syncer) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key != ""
}

// Identity returns the bound identity, or "".
func (s *Syncer) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Disconnect stops the subscription and unbinds the user.
func (s *Syncer) Disconnect() {
	s.mu.Lock()
	stop := s.stop
	wasBound := s.key != ""
	s.gen++
	s.identity = ""
	s.key = ""
	s.onChange = nil
	s.stop = nil
	s.mu.Unlock()

	// stop may wait for an in-flight handle, which needs s.mu.
	if stop != nil {
		stop()
	}
	if wasBound {
		s.logger.Info("Remote sync disconnected")
	}
}

// Close disconnects and closes the backend.
func (s *Syncer) Close() error {
	s.Disconnect()
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}
