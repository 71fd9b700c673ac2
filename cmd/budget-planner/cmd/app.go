package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shunichi-ikebuchi/budget-planner/pkg/category"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/config"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/db"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/pathutil"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/remote"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/session"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/state"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/storage"
)

// app holds the components shared by the commands.
type app struct {
	cfg      *config.Config
	paths    *pathutil.PathResolver
	conn     *db.Connection
	backend  storage.Backend
	local    *storage.Local
	history  *db.SyncHistory
	syncer   *remote.Syncer
	store    *state.Store
	session  *session.Session
	identity string
}

// openApp loads configuration and opens local storage. Remote sync is
// connected only when withRemote is set and REDIS_ADDR is configured; a
// failed connection continues offline.
func openApp(ctx context.Context, withRemote bool) *app {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate(
		[]string{"storage", "dataDir"},
		[]string{"storage", "backend"},
	); err != nil {
		exitOnError(err, "invalid configuration")
	}

	a := &app{cfg: cfg, identity: cfg.User}
	if user != "" {
		a.identity = user
	}
	a.identity = strings.ToLower(strings.TrimSpace(a.identity))

	a.paths = pathutil.New(pathutil.Config{
		DataRoot:     cfg.Storage.DataDir,
		DatabasePath: cfg.Storage.DBPath,
		BoltPath:     cfg.Storage.BoltPath,
		ExportDir:    cfg.Storage.ExportDir,
	})

	dbPath := a.paths.GetDatabasePath()
	slog.Debug("Opening database", "path", dbPath)
	a.conn, err = db.Open(dbPath)
	exitOnError(err, "failed to open database")
	a.history = db.NewSyncHistory(a.conn)

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		a.backend = storage.NewSQLiteBackend(a.conn)
	default:
		boltPath := a.paths.GetBoltPath()
		slog.Debug("Opening snapshot store", "path", boltPath)
		a.backend, err = storage.OpenBolt(boltPath)
		exitOnError(err, "failed to open snapshot store")
	}
	a.local = storage.NewLocal(a.backend, slog.Default())

	catalog, err := category.Load(cfg.Storage.CategoriesFile)
	exitOnError(err, "failed to load categories")
	a.store = state.New(state.WithCatalog(catalog), state.WithLogger(slog.Default()))

	if withRemote && cfg.RemoteEnabled() {
		backend, err := remote.ConnectRedis(ctx, remote.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			slog.Error("Remote sync unavailable, continuing offline", "error", err)
		} else {
			a.syncer = remote.NewSyncer(backend, slog.Default())
		}
	}

	a.session = session.New(a.store, a.local, a.syncer,
		session.WithHistory(a.history),
		session.WithLogger(slog.Default()),
	)
	return a
}

// start loads the identity's state into the store.
func (a *app) start(ctx context.Context) session.Source {
	src, err := a.session.Start(ctx, a.identity)
	exitOnError(err, "failed to start session")
	slog.Debug("Session started", "identity", a.identity, "source", src)
	if a.identity != "" {
		if err := a.history.SetMetadata(a.historyKey("last_source"), string(src)); err != nil {
			slog.Warn("Failed to record session metadata", "error", err)
		}
	}
	return src
}

// historyKey scopes a sync metadata name to the current identity.
func (a *app) historyKey(name string) string {
	return db.MetadataKey(a.identity, name)
}

// Close flushes pending writes and releases every resource.
func (a *app) Close() {
	a.session.Close()
	if a.syncer != nil {
		if err := a.syncer.Close(); err != nil {
			slog.Error("Failed to close remote sync", "error", err)
		}
	}
	if err := a.backend.Close(); err != nil {
		slog.Error("Failed to close snapshot store", "error", err)
	}
	if err := a.conn.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}
