// Package session wires the domain store to local storage and remote sync.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shunichi-ikebuchi/budget-planner/pkg/db"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/model"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/remote"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/state"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/storage"
)

// Source identifies where Start found the initial state.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
	SourceEmpty  Source = "empty"
)

// DefaultRemoteTimeout bounds a single remote write.
const DefaultRemoteTimeout = 10 * time.Second

// HistoryRecorder receives the outcome of each remote write.
type HistoryRecorder interface {
	RecordSync(record db.SyncRecord) error
}

// FailureFunc is told about remote writes that failed.
type FailureFunc func(identity string, err error)

// Option configures a Session.
type Option func(*Session)

// WithHistory records remote write outcomes in h.
func WithHistory(h HistoryRecorder) Option {
	return func(s *Session) { s.history = h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithFailureHandler calls fn after every failed remote write.
func WithFailureHandler(fn FailureFunc) Option {
	return func(s *Session) { s.onFailure = fn }
}

// WithRemoteTimeout bounds each remote write.
func WithRemoteTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// Session persists every store mutation locally and, when a user is bound,
// remotely, and applies remote changes to the store.
//
// Local saves happen synchronously in the mutating goroutine. Remote saves
// happen on a single writer goroutine that always writes the newest pending
// snapshot, so intermediate snapshots may be skipped.
type Session struct {
	store   *state.Store
	local   *storage.Local
	remote  *remote.Syncer
	history HistoryRecorder
	logger  *slog.Logger
	timeout time.Duration

	mu        sync.Mutex
	onFailure FailureFunc
	idle    *sync.Cond
	pending *model.Snapshot
	busy    bool
	closed  bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

// New creates a Session and installs it as store's persister. syncer may be
// nil when remote sync is not configured.
func New(store *state.Store, local *storage.Local, syncer *remote.Syncer, opts ...Option) *Session {
	s := &Session{
		store:   store,
		local:   local,
		remote:  syncer,
		logger:  slog.Default(),
		timeout: DefaultRemoteTimeout,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.idle = sync.NewCond(&s.mu)

	go s.writer()
	store.SetPersister(s)
	return s
}

// Start binds identity and loads the initial state into the store.
//
// A remote snapshot is authoritative and also overwrites the local copy.
// Without one the local snapshot is used, and without either the store
// starts empty. A failed remote load falls back to local.
func (s *Session) Start(ctx context.Context, identity string) (Source, error) {
	s.Flush()

	s.local.SetUser(identity)
	logger := s.logger.With("key", s.local.Key())

	if s.remoteEnabled() {
		if err := s.remote.SetUser(ctx, identity, s.applyRemote); err != nil {
			logger.Warn("Remote subscription failed, continuing offline", "error", err)
		}
	}

	if s.remoteActive() {
		snap, err := s.remote.Load(ctx)
		switch {
		case err == nil:
			s.store.Init(snap)
			if err := s.local.SaveLocal(snap); err != nil {
				logger.Error("Failed to cache remote snapshot locally", "error", err)
			}
			logger.Info("Loaded remote snapshot", "revision", snap.Revision)
			return SourceRemote, nil
		case errors.Is(err, remote.ErrNotFound):
			logger.Debug("No remote snapshot")
		default:
			logger.Warn("Remote load failed, falling back to local", "error", err)
		}
	}

	snap, err := s.local.Load()
	switch {
	case err == nil:
		s.store.Init(snap)
		logger.Info("Loaded local snapshot", "transactions", len(snap.Transactions))
		return SourceLocal, nil
	case errors.Is(err, storage.ErrNotFound):
		logger.Debug("No local snapshot")
	default:
		logger.Error("Failed to load local snapshot, starting empty", "error", err)
	}

	s.store.Init(nil)
	return SourceEmpty, nil
}

// Persist saves snap locally and queues it for the remote writer.
// Failures are logged; they never reach the mutation that produced snap.
func (s *Session) Persist(snap *model.Snapshot) {
	if err := s.local.SaveLocal(snap); err != nil {
		s.logger.Error("Failed to save locally", "error", err)
	}

	if !s.remoteActive() {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending = snap
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// applyRemote handles a change written by another process.
func (s *Session) applyRemote(snap *model.Snapshot) {
	s.store.Replace(snap)
	if err := s.local.SaveLocal(snap); err != nil {
		s.logger.Error("Failed to back up remote change locally", "error", err)
	}
}

func (s *Session) writer() {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
		case <-s.quit:
			return
		}

		for {
			s.mu.Lock()
			snap := s.pending
			s.pending = nil
			s.busy = snap != nil
			if snap == nil {
				s.idle.Broadcast()
				s.mu.Unlock()
				break
			}
			s.mu.Unlock()

			s.writeRemote(snap)
		}
	}
}

func (s *Session) writeRemote(snap *model.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	identity := s.remote.Identity()
	rev, err := s.remote.Save(ctx, snap)
	if errors.Is(err, remote.ErrInactive) {
		return
	}

	record := db.SyncRecord{
		Identity: identity,
		Revision: rev,
		Status:   db.SyncStatusOK,
	}
	if err != nil {
		s.logger.Error("Failed to save remotely", "identity", identity, "revision", rev, "error", err)
		record.Status = db.SyncStatusFailed
		record.Error = err.Error()

		s.mu.Lock()
		onFailure := s.onFailure
		s.mu.Unlock()
		if onFailure != nil {
			onFailure(identity, err)
		}
	} else {
		s.logger.Debug("Saved remotely", "identity", identity, "revision", rev)
	}

	if s.history != nil {
		if err := s.history.RecordSync(record); err != nil {
			s.logger.Warn("Failed to record sync history", "error", err)
		}
	}
}

// OnRemoteFailure replaces the failure handler set by WithFailureHandler.
func (s *Session) OnRemoteFailure(fn FailureFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFailure = fn
}

// Flush blocks until every queued remote write has finished.
func (s *Session) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.pending != nil || s.busy {
		s.idle.Wait()
	}
}

// Identity returns the remotely bound identity, or "" when offline.
func (s *Session) Identity() string {
	if s.remote == nil {
		return ""
	}
	return s.remote.Identity()
}

// RemoteActive reports whether mutations are being written remotely.
func (s *Session) RemoteActive() bool {
	return s.remoteActive()
}

// Close flushes pending writes, stops the writer and detaches from the store
// and the remote subscription.
func (s *Session) Close() {
	s.Flush()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.store.SetPersister(nil)
	close(s.quit)
	<-s.done
	if s.remote != nil {
		s.remote.Disconnect()
	}
}

func (s *Session) remoteEnabled() bool {
	return s.remote != nil && s.remote.Configured()
}

func (s *Session) remoteActive() bool {
	return s.remote != nil && s.remote.Active()
}
