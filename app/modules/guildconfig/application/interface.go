package guildservice

import (
	"context"

	guilddomain "github.com/parlor-gg/guildboard/app/modules/guildconfig/domain"
)

// Service is the configuration API surface exposed to the web layer and the
// bot event consumer.
type Service interface {
	// GetConfig never fails with "not found": an unseen guild gets a default
	// record, persisted best-effort. Backend read failures degrade to an
	// in-memory default so the dashboard stays usable.
	GetConfig(ctx context.Context, guildID string) (*guilddomain.ServerConfig, error)

	SetPrefix(ctx context.Context, guildID, prefix string) (*guilddomain.ServerConfig, error)
	SetNickname(ctx context.Context, guildID, nickname string) (*guilddomain.ServerConfig, error)
	SetModuleEnabled(ctx context.Context, guildID, moduleName string, enabled bool) (*guilddomain.ServerConfig, error)
	SetNotification(ctx context.Context, guildID string, kind guilddomain.NotificationKind, tpl *guilddomain.NotificationTemplate) (*guilddomain.ServerConfig, error)

	// MarkPresence records whether the bot is currently in the guild.
	// Idempotent; repeated calls only advance lastSeen.
	MarkPresence(ctx context.Context, guildID string, present bool) error

	// RecordCommand feeds one command execution event into the stats
	// aggregator. Executing a command is itself evidence of presence.
	RecordCommand(ctx context.Context, guildID, commandName, category, userID string) error

	// CheckPresence resolves the guild's presence, preferring the live bot
	// connection over the stored flag.
	CheckPresence(ctx context.Context, guildID string) (Presence, error)

	GetStats(ctx context.Context, guildID string) (*guilddomain.UsageStats, error)

	ListAdministrators(ctx context.Context) ([]guilddomain.Administrator, error)
	AddAdministrator(ctx context.Context, actorID, userID, role string) error
	RemoveAdministrator(ctx context.Context, actorID, userID string) error
	IsAdministrator(ctx context.Context, userID string) (bool, error)

	ListPermissions(ctx context.Context, guildID string) ([]guilddomain.Permission, error)
	GrantPermission(ctx context.Context, actorID, guildID, userID string) error
	RevokePermission(ctx context.Context, actorID, guildID, userID string) error

	// Authorize reports whether userID may configure guildID: global
	// administrators always may, otherwise a per-guild permission is required.
	Authorize(ctx context.Context, guildID, userID string) (bool, error)
}

// Presence is the result of a presence check. Fresh is false when only a
// stored flag older than the staleness window was available.
type Presence struct {
	Present bool `json:"present"`
	Fresh   bool `json:"fresh"`
}

// GuildLister is the live view into the bot process: the set of guild ids the
// bot currently belongs to. Available reports whether the bot connection is
// up; when it is not, presence checks fall back to the stored flag.
type GuildLister interface {
	Available() bool
	GuildIDs(ctx context.Context) ([]string, error)
}
