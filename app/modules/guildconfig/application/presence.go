package guildservice

import (
	"context"
	"log/slog"
	"time"
)

// presenceStaleAfter is how long a stored presence flag is trusted without
// re-verification.
const presenceStaleAfter = 5 * time.Minute

// MarkPresence records the bot's presence in the guild and refreshes lastSeen.
// Idempotent: repeated calls only advance the timestamp.
func (s *GuildConfigService) MarkPresence(ctx context.Context, guildID string, present bool) error {
	cfg, err := s.loadOrDefault(ctx, guildID)
	if err != nil {
		return &StorageError{Op: "mark_presence", Err: err}
	}
	now := s.now().UTC()
	cfg.BotPresent = present
	cfg.LastSeen = &now
	return s.save(ctx, "mark_presence", cfg)
}

// CheckPresence resolves whether the bot is in the guild. The live guild list
// wins when the bot connection is up, and the stored flag is refreshed from
// it. Without a live list the stored flag is used; if it is older than the
// staleness window the result is marked not fresh so callers can show
// "unknown" instead of a confident answer.
func (s *GuildConfigService) CheckPresence(ctx context.Context, guildID string) (Presence, error) {
	if s.lister != nil && s.lister.Available() {
		ids, err := s.lister.GuildIDs(ctx)
		if err == nil {
			present := false
			for _, id := range ids {
				if id == guildID {
					present = true
					break
				}
			}
			if err := s.MarkPresence(ctx, guildID, present); err != nil {
				s.logger.WarnContext(ctx, "could not persist live presence",
					slog.String("guild_id", guildID), slog.Any("error", err))
			}
			return Presence{Present: present, Fresh: true}, nil
		}
		s.logger.WarnContext(ctx, "live guild list unavailable, using stored flag",
			slog.Any("error", err))
	}

	cfg, err := s.loadOrDefault(ctx, guildID)
	if err != nil {
		return Presence{}, &StorageError{Op: "check_presence", Err: err}
	}
	fresh := cfg.LastSeen != nil && s.now().Sub(*cfg.LastSeen) <= presenceStaleAfter
	return Presence{Present: cfg.BotPresent, Fresh: fresh}, nil
}
