// Package application wires configuration, the project store, the optional
// S3 sink and the import service into a runnable csvtree instance. Both the
// server binary and the CLI build on it.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/csvtree/internal/config"
	"github.com/JonMunkholm/csvtree/internal/core"
	_ "github.com/JonMunkholm/csvtree/internal/core/profiles" // Register built-in profiles
	"github.com/JonMunkholm/csvtree/internal/store"
	"github.com/JonMunkholm/csvtree/internal/store/objectstore"
	"github.com/JonMunkholm/csvtree/internal/web"
)

// App holds the long-lived pieces of a running instance.
type App struct {
	Config  *config.Config
	Store   store.Store
	Sink    *objectstore.Sink // nil when export is disabled
	Service *core.Service
}

// New opens the configured store and export sink and builds the service.
// Close releases them.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	app := &App{Config: cfg, Store: st}

	var sink core.ExportSink
	if cfg.Export.Enabled() {
		s, err := objectstore.NewSink(cfg.Export)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("create export sink: %w", err)
		}
		app.Sink = s
		sink = s
		slog.Info("export enabled", "bucket", s.Bucket(), "endpoint", cfg.Export.Endpoint)
	}

	app.Service = core.NewService(st, sink, cfg.ServiceConfig())

	slog.Info("profiles registered", "count", len(core.Profiles()))
	return app, nil
}

// Serve runs the HTTP server until ctx is done, then drains running imports
// and shuts the server down within SERVER_SHUTDOWN_TIMEOUT.
func (a *App) Serve(ctx context.Context) error {
	var opts []web.Option
	if c, ok := a.Store.(*store.Cached); ok {
		opts = append(opts, web.WithCacheStats(c.Stats))
	}
	server := web.NewServer(a.Service, a.Config, opts...)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	// Wait for active imports to complete (with timeout)
	if status := a.Service.LimiterStatus(); status.Active > 0 {
		slog.Info("waiting for imports to complete", "active", status.Active)
		if err := a.Service.Shutdown(shutdownCtx); err != nil {
			slog.Warn("imports did not complete in time", "error", err)
		} else {
			slog.Info("all imports completed")
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
