package guildservice

import (
	"context"
	"log/slog"

	guilddomain "github.com/parlor-gg/guildboard/app/modules/guildconfig/domain"
)

// RecordCommand aggregates one command execution into the guild's stats: the
// total counter always increments, the category counter increments under its
// normalized name, lastCommandTime advances and the user joins the unique-user
// set. Re-recording the same user never changes the set's cardinality.
//
// A command running in the guild also proves the bot is there, so presence is
// refreshed in the same write.
func (s *GuildConfigService) RecordCommand(ctx context.Context, guildID, commandName, category, userID string) error {
	cfg, err := s.loadOrDefault(ctx, guildID)
	if err != nil {
		return &StorageError{Op: "record_command", Err: err}
	}

	normalized := guilddomain.NormalizeCategory(category)

	cfg.Stats.CommandsExecuted++
	cfg.Stats.CommandsByCategory[normalized]++
	now := s.now().UTC()
	cfg.Stats.LastCommandTime = &now
	cfg.Stats.UniqueUsers.Add(userID)

	cfg.BotPresent = true
	cfg.LastSeen = &now

	if err := s.save(ctx, "record_command", cfg); err != nil {
		return err
	}

	s.metrics.RecordCommandEvent(normalized)
	s.logger.DebugContext(ctx, "command recorded",
		slog.String("guild_id", guildID),
		slog.String("command", commandName),
		slog.String("category", normalized),
	)
	return nil
}
