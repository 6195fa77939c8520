// Package app wires the process together: storage backend selection, event
// bus, sessions and the guildconfig module.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parlor-gg/guildboard/app/eventbus"
	"github.com/parlor-gg/guildboard/app/metrics"
	"github.com/parlor-gg/guildboard/app/modules/guildconfig"
	guildstorage "github.com/parlor-gg/guildboard/app/modules/guildconfig/infrastructure/storage"
	"github.com/parlor-gg/guildboard/app/modules/guildconfig/infrastructure/storage/bunstore"
	"github.com/parlor-gg/guildboard/app/modules/guildconfig/infrastructure/storage/filestore"
	"github.com/parlor-gg/guildboard/app/modules/session"
	"github.com/parlor-gg/guildboard/config"
)

// App owns the process-lifetime state. Nothing here is package-level; handlers
// and modules receive what they need through construction.
type App struct {
	Config      *config.Config
	GuildConfig *guildconfig.Module

	logger   *slog.Logger
	store    guildstorage.Backend
	bus      eventbus.EventBus
	sessions session.Store
	router   chi.Router
	wg       sync.WaitGroup
}

// NewApp initializes the application.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store := selectBackend(ctx, cfg, logger)

	var bus eventbus.EventBus
	if cfg.NATS.URL != "" {
		var err error
		bus, err = eventbus.New(ctx, cfg.NATS.URL, logger)
		if err != nil {
			// The dashboard is still useful without the bot connection; run
			// degraded rather than refusing to start.
			logger.ErrorContext(ctx, "event bus unavailable, continuing without it", slog.Any("error", err))
			bus = nil
		}
	}

	sessions := session.NewMemoryStore()
	tokens := session.NewTokenProvider(cfg.Session.Secret)
	registry := prometheus.NewRegistry()
	recorder := metrics.New(registry)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	module, err := guildconfig.NewModule(ctx, guildconfig.Deps{
		Store:          store,
		Bus:            bus,
		Sessions:       sessions,
		Tokens:         tokens,
		Metrics:        recorder,
		OwnerID:        cfg.OwnerUserID,
		Logger:         logger,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		SessionTTL:     cfg.Session.TTL,
		ServiceToken:   cfg.Session.ServiceToken,
	}, router)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize guildconfig module: %w", err)
	}

	return &App{
		Config:      cfg,
		GuildConfig: module,
		logger:      logger,
		store:       store,
		bus:         bus,
		sessions:    sessions,
		router:      router,
	}, nil
}

// selectBackend makes the one-time storage decision: Postgres when a DSN is
// configured and reachable, the JSON file store otherwise. A database that
// fails to initialize falls back once, permanently, for this process
// lifetime.
func selectBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) guildstorage.Backend {
	if cfg.Postgres.DSN != "" {
		store, err := bunstore.New(ctx, cfg.Postgres.DSN, logger)
		if err == nil {
			return store
		}
		logger.ErrorContext(ctx, "database backend failed to initialize, falling back to file store",
			slog.Any("error", err))
	}

	store, err := filestore.New(cfg.Store.Path, logger)
	if err != nil {
		// No working backend at all; a fresh in-place path always succeeds,
		// so this only happens on broken deployments.
		logger.ErrorContext(ctx, "file backend failed to initialize", slog.Any("error", err))
		panic(err)
	}
	logger.InfoContext(ctx, "file backend initialized", slog.String("path", cfg.Store.Path))
	return store
}

// Run serves HTTP and consumes bot events until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	a.wg.Add(1)
	go a.GuildConfig.Run(ctx, &a.wg)

	srv := &http.Server{
		Addr:              a.Config.HTTP.Addr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown", slog.Any("error", err))
	}
	return nil
}

// Close releases everything the app holds.
func (a *App) Close() {
	a.GuildConfig.Close()
	a.wg.Wait()

	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.logger.Error("closing event bus", slog.Any("error", err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("closing storage backend", slog.Any("error", err))
	}
}
