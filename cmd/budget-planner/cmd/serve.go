package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/budget-planner/pkg/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the budget API",
	Long: `Serve the budget JSON API and the websocket change stream.

The state of --user (or BUDGET_USER) is loaded from Redis when it is
configured and reachable, otherwise from the local store. Every change
is written locally and mirrored to Redis.

Example:
  budget-planner serve --user alice
  PORT=9000 budget-planner serve`,
	Run: runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	logLevel := slog.LevelInfo
	if debug || os.Getenv("DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := openApp(ctx, true)
	defer a.Close()

	src := a.start(ctx)

	hub := api.NewHub(logger)
	go hub.Run(ctx)
	unsubscribe := a.store.Subscribe(hub.Observe)
	defer unsubscribe()
	a.session.OnRemoteFailure(hub.SyncFailed)

	router := api.NewRouter(a.store, hub, a.session)

	port := a.cfg.Server.Port
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting budget-planner server",
			"port", port,
			"identity", a.identity,
			"source", src,
			"remote", a.session.RemoteActive(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	a.session.Flush()

	slog.Info("Server exited")
}
