// Package guildconfig assembles the guild configuration module: service,
// HTTP surface and the command-event consumer feeding the stats aggregator.
package guildconfig

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/parlor-gg/guildboard/app/eventbus"
	"github.com/parlor-gg/guildboard/app/events"
	"github.com/parlor-gg/guildboard/app/metrics"
	guildservice "github.com/parlor-gg/guildboard/app/modules/guildconfig/application"
	guildhandlers "github.com/parlor-gg/guildboard/app/modules/guildconfig/infrastructure/handlers"
	guildstorage "github.com/parlor-gg/guildboard/app/modules/guildconfig/infrastructure/storage"
	"github.com/parlor-gg/guildboard/app/modules/session"
)

// Module is the assembled guild configuration module.
type Module struct {
	Service  guildservice.Service
	handlers *guildhandlers.Handlers
	bus      eventbus.EventBus
	logger   *slog.Logger
	cancel   context.CancelFunc
}

// Deps are the collaborators the module is built from. Bus and Lister may be
// nil when the bot connection is not configured.
type Deps struct {
	Store    guildstorage.Backend
	Bus      eventbus.EventBus
	Lister   guildservice.GuildLister
	Sessions session.Store
	Tokens   *session.TokenProvider
	Metrics  metrics.Recorder
	OwnerID  string
	Logger   *slog.Logger

	AllowedOrigins []string
	SessionTTL     time.Duration
	ServiceToken   string
}

// NewModule builds the module and mounts its routes on httpRouter. A nil
// router skips mounting (event-consumer-only deployments).
func NewModule(ctx context.Context, deps Deps, httpRouter chi.Router) (*Module, error) {
	opts := []guildservice.Option{
		guildservice.WithOwner(deps.OwnerID),
	}
	if deps.Bus != nil {
		opts = append(opts, guildservice.WithPublisher(deps.Bus))
	}
	if deps.Lister != nil {
		opts = append(opts, guildservice.WithGuildLister(deps.Lister))
	}

	service := guildservice.NewService(deps.Store, deps.Logger, deps.Metrics, opts...)
	handlers := guildhandlers.New(service, deps.Logger)

	if httpRouter != nil {
		limiter := guildhandlers.NewIPRateLimiter(10, 20)
		auth := guildhandlers.NewAuthHandlers(deps.Sessions, deps.Tokens, deps.SessionTTL, deps.ServiceToken, deps.Logger)

		httpRouter.Route("/api", func(r chi.Router) {
			r.Use(guildhandlers.CORSMiddleware(deps.AllowedOrigins))
			r.Use(guildhandlers.RateLimitMiddleware(limiter))

			// Session exchange is authenticated by service token, not cookie.
			r.Post("/auth/session", auth.HandleIssueSession)
			r.Delete("/auth/session", auth.HandleRevokeSession)

			r.Group(func(r chi.Router) {
				r.Use(guildhandlers.SessionMiddleware(deps.Tokens, deps.Sessions))

				r.Route("/guilds/{guildID}", func(r chi.Router) {
					r.Get("/config", handlers.HandleGetConfig)
					r.Put("/config/prefix", handlers.HandleSetPrefix)
					r.Put("/config/nickname", handlers.HandleSetNickname)
					r.Put("/config/modules", handlers.HandleSetModule)
					r.Put("/config/notifications", handlers.HandleSetNotification)
					r.Post("/config/notifications/preview", handlers.HandlePreviewNotification)
					r.Get("/stats", handlers.HandleGetStats)
					r.Get("/presence", handlers.HandleGetPresence)
					r.Get("/permissions", handlers.HandleListPermissions)
					r.Post("/permissions", handlers.HandleGrantPermission)
					r.Delete("/permissions/{userID}", handlers.HandleRevokePermission)
				})

				r.Route("/administrators", func(r chi.Router) {
					r.Get("/", handlers.HandleListAdministrators)
					r.Post("/", handlers.HandleAddAdministrator)
					r.Delete("/{userID}", handlers.HandleRemoveAdministrator)
				})
			})
		})
	}

	deps.Logger.InfoContext(ctx, "guildconfig module initialized")

	return &Module{
		Service:  service,
		handlers: handlers,
		bus:      deps.Bus,
		logger:   deps.Logger,
	}, nil
}

// Run consumes command execution events from the bot until ctx is canceled.
// Without an event bus it returns immediately.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	if wg != nil {
		defer wg.Done()
	}
	if m.bus == nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	msgs, err := m.bus.Subscribe(ctx, events.TopicCommandExecuted)
	if err != nil {
		m.logger.ErrorContext(ctx, "subscribe to command events", slog.Any("error", err))
		return
	}

	m.logger.InfoContext(ctx, "consuming command events", slog.String("topic", events.TopicCommandExecuted))

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var ev events.CommandExecuted
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				m.logger.Warn("malformed command event", slog.Any("error", err))
				msg.Ack()
				continue
			}
			if err := m.Service.RecordCommand(ctx, ev.GuildID, ev.CommandName, ev.Category, ev.UserID); err != nil {
				m.logger.ErrorContext(ctx, "record command event",
					slog.String("guild_id", ev.GuildID), slog.Any("error", err))
				// Nack so the broker redelivers; a storage blip should not
				// lose the event.
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}
}

// Close stops the consumer.
func (m *Module) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}
