// Package guildservice implements the configuration store service: the single
// write path for guild configuration, statistics and administrator state.
package guildservice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/parlor-gg/guildboard/app/events"
	"github.com/parlor-gg/guildboard/app/metrics"
	guilddomain "github.com/parlor-gg/guildboard/app/modules/guildconfig/domain"
	guildstorage "github.com/parlor-gg/guildboard/app/modules/guildconfig/infrastructure/storage"
)

// GuildConfigService implements Service against a storage backend chosen at
// process start. It never inspects which backend it was given.
type GuildConfigService struct {
	store     guildstorage.Backend
	logger    *slog.Logger
	metrics   metrics.Recorder
	publisher message.Publisher
	lister    GuildLister
	ownerID   string
	now       func() time.Time
}

var _ Service = (*GuildConfigService)(nil)

// Option configures optional service collaborators.
type Option func(*GuildConfigService)

// WithPublisher wires the event publisher used to notify the bot process of
// config changes. Publishing is best effort; failures are logged, not
// returned.
func WithPublisher(p message.Publisher) Option {
	return func(s *GuildConfigService) { s.publisher = p }
}

// WithGuildLister wires the live bot guild list for presence checks.
func WithGuildLister(l GuildLister) Option {
	return func(s *GuildConfigService) { s.lister = l }
}

// WithOwner marks one user id as a permanent administrator, so the store can
// be bootstrapped before any administrator row exists.
func WithOwner(userID string) Option {
	return func(s *GuildConfigService) { s.ownerID = userID }
}

// WithClock overrides the time source; tests use it.
func WithClock(now func() time.Time) Option {
	return func(s *GuildConfigService) { s.now = now }
}

// NewService creates the config service.
func NewService(store guildstorage.Backend, logger *slog.Logger, rec metrics.Recorder, opts ...Option) *GuildConfigService {
	s := &GuildConfigService{
		store:   store,
		logger:  logger,
		metrics: rec,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// loadOrDefault fetches the guild's record, falling back to a fresh default
// for an unseen guild. The error is the raw backend read error, nil for the
// not-found case.
func (s *GuildConfigService) loadOrDefault(ctx context.Context, guildID string) (*guilddomain.ServerConfig, error) {
	cfg, err := s.store.GetConfig(ctx, guildID)
	if err != nil {
		if errors.Is(err, guildstorage.ErrNotFound) {
			return guilddomain.DefaultConfig(guildID), nil
		}
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// save persists cfg and classifies any failure as a StorageError.
func (s *GuildConfigService) save(ctx context.Context, op string, cfg *guilddomain.ServerConfig) error {
	if err := s.store.SaveConfig(ctx, cfg); err != nil {
		s.logger.ErrorContext(ctx, "config write failed",
			slog.String("operation", op),
			slog.String("guild_id", cfg.GuildID),
			slog.Any("error", err),
		)
		s.metrics.RecordOperation(op, false)
		return &StorageError{Op: op, Err: err}
	}
	s.metrics.RecordOperation(op, true)
	return nil
}

// publishConfigUpdated tells the bot process to refresh its view of the guild.
func (s *GuildConfigService) publishConfigUpdated(ctx context.Context, guildID, field string) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(events.ConfigUpdated{
		GuildID:   guildID,
		Field:     field,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "encode config-updated event", slog.Any("error", err))
		return
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	if err := s.publisher.Publish(events.TopicConfigUpdated, msg); err != nil {
		s.logger.WarnContext(ctx, "publish config-updated event",
			slog.String("guild_id", guildID),
			slog.String("field", field),
			slog.Any("error", err),
		)
	}
}
