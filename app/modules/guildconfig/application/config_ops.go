package guildservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	guilddomain "github.com/parlor-gg/guildboard/app/modules/guildconfig/domain"
	guildstorage "github.com/parlor-gg/guildboard/app/modules/guildconfig/infrastructure/storage"
)

// GetConfig returns the guild's configuration, creating and persisting a
// default record on first access. Backend failures on this read path degrade
// to an in-memory default instead of erroring, so the dashboard keeps working
// through a partial outage.
func (s *GuildConfigService) GetConfig(ctx context.Context, guildID string) (*guilddomain.ServerConfig, error) {
	cfg, err := s.store.GetConfig(ctx, guildID)
	if err == nil {
		cfg.Normalize()
		s.metrics.RecordOperation("get_config", true)
		return cfg, nil
	}

	if errors.Is(err, guildstorage.ErrNotFound) {
		cfg = guilddomain.DefaultConfig(guildID)
		if saveErr := s.store.SaveConfig(ctx, cfg); saveErr != nil {
			// The default creation write is best effort: the caller asked to
			// read, not to write.
			s.logger.WarnContext(ctx, "could not persist default config",
				slog.String("guild_id", guildID), slog.Any("error", saveErr))
		}
		s.metrics.RecordOperation("get_config", true)
		return cfg, nil
	}

	s.logger.ErrorContext(ctx, "config read failed, serving defaults",
		slog.String("guild_id", guildID), slog.Any("error", err))
	s.metrics.RecordOperation("get_config", false)
	return guilddomain.DefaultConfig(guildID), nil
}

// SetPrefix validates and stores a new command prefix.
func (s *GuildConfigService) SetPrefix(ctx context.Context, guildID, prefix string) (*guilddomain.ServerConfig, error) {
	if prefix == "" {
		return nil, &ValidationError{Field: "prefix", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(prefix) > guilddomain.MaxPrefixLen {
		return nil, &ValidationError{
			Field:  "prefix",
			Reason: fmt.Sprintf("must be at most %d characters", guilddomain.MaxPrefixLen),
		}
	}

	cfg, err := s.loadOrDefault(ctx, guildID)
	if err != nil {
		return nil, &StorageError{Op: "set_prefix", Err: err}
	}
	cfg.Prefix = prefix
	if err := s.save(ctx, "set_prefix", cfg); err != nil {
		return nil, err
	}
	s.publishConfigUpdated(ctx, guildID, "prefix")
	return cfg, nil
}

// SetNickname validates and stores the bot nickname. An empty or
// whitespace-only nickname clears it.
func (s *GuildConfigService) SetNickname(ctx context.Context, guildID, nickname string) (*guilddomain.ServerConfig, error) {
	nickname = strings.TrimSpace(nickname)
	if utf8.RuneCountInString(nickname) > guilddomain.MaxNicknameLen {
		return nil, &ValidationError{
			Field:  "nickname",
			Reason: fmt.Sprintf("must be at most %d characters", guilddomain.MaxNicknameLen),
		}
	}

	cfg, err := s.loadOrDefault(ctx, guildID)
	if err != nil {
		return nil, &StorageError{Op: "set_nickname", Err: err}
	}
	cfg.Nickname = nickname
	if err := s.save(ctx, "set_nickname", cfg); err != nil {
		return nil, err
	}
	s.publishConfigUpdated(ctx, guildID, "nickname")
	return cfg, nil
}

// SetModuleEnabled toggles one of the four known modules. An unknown module
// name is rejected rather than silently ignored; a typo in a dashboard call
// should be visible, not swallowed.
func (s *GuildConfigService) SetModuleEnabled(ctx context.Context, guildID, moduleName string, enabled bool) (*guilddomain.ServerConfig, error) {
	if !guilddomain.KnownModule(moduleName) {
		return nil, &ValidationError{
			Field:  "module",
			Reason: fmt.Sprintf("unknown module %q", moduleName),
		}
	}

	cfg, err := s.loadOrDefault(ctx, guildID)
	if err != nil {
		return nil, &StorageError{Op: "set_module", Err: err}
	}
	cfg.Modules[moduleName] = enabled
	if err := s.save(ctx, "set_module", cfg); err != nil {
		return nil, err
	}
	s.publishConfigUpdated(ctx, guildID, "modules")
	return cfg, nil
}

// SetNotification replaces one of the two notification templates.
func (s *GuildConfigService) SetNotification(ctx context.Context, guildID string, kind guilddomain.NotificationKind, tpl *guilddomain.NotificationTemplate) (*guilddomain.ServerConfig, error) {
	if !guilddomain.KnownKind(kind) {
		return nil, &ValidationError{
			Field:  "kind",
			Reason: fmt.Sprintf("unknown notification kind %q", kind),
		}
	}
	if tpl == nil {
		return nil, &ValidationError{Field: "template", Reason: "must not be empty"}
	}
	if tpl.DeleteAfter < 0 {
		return nil, &ValidationError{Field: "deleteAfter", Reason: "must not be negative"}
	}

	cfg, err := s.loadOrDefault(ctx, guildID)
	if err != nil {
		return nil, &StorageError{Op: "set_notification", Err: err}
	}
	copied := *tpl
	cfg.Notifications[kind] = &copied
	if err := s.save(ctx, "set_notification", cfg); err != nil {
		return nil, err
	}
	s.publishConfigUpdated(ctx, guildID, "notifications."+string(kind))
	return cfg, nil
}

// GetStats returns the guild's usage statistics.
func (s *GuildConfigService) GetStats(ctx context.Context, guildID string) (*guilddomain.UsageStats, error) {
	cfg, err := s.GetConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}
	stats := cfg.Stats
	return &stats, nil
}
