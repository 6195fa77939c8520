package bunstore

import (
	"time"

	"github.com/uptrace/bun"

	guilddomain "github.com/parlor-gg/guildboard/app/modules/guildconfig/domain"
)

// GuildConfigRow is one guild's configuration row. The prefix, presence flag
// and module toggles get their own columns; everything else (nickname, the two
// notification templates and the counters) lives in the stats JSONB blob,
// matching the historical dump layout so existing rows keep loading.
type GuildConfigRow struct {
	bun.BaseModel `bun:"table:guild_configs,alias:g"`

	GuildID    string          `bun:"guild_id,pk,notnull,type:varchar(20)"`
	Prefix     string          `bun:"prefix,notnull,default:'!',type:varchar(5)"`
	BotPresent bool            `bun:"bot_present,notnull,default:false"`
	LastSeen   *time.Time      `bun:"last_seen,nullzero"`
	Modules    map[string]bool `bun:"modules,type:jsonb"`
	Stats      StatsBlob       `bun:"stats,type:jsonb"`
	CreatedAt  time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// StatsBlob is the JSONB payload of guild_configs.stats.
type StatsBlob struct {
	CommandsExecuted   int64               `json:"commandsExecuted"`
	CommandsByCategory map[string]int64    `json:"commandsByCategory"`
	LastCommandTime    *time.Time          `json:"lastCommandTime,omitempty"`
	UniqueUsers        guilddomain.UserSet `json:"uniqueUsers"`

	Nickname      string                                                              `json:"nickname,omitempty"`
	Notifications map[guilddomain.NotificationKind]*guilddomain.NotificationTemplate `json:"notifications,omitempty"`
}

// PermissionRow grants one user configuration access to one guild. Rows are
// unique per (guild, user) and cascade away with the guild row.
type PermissionRow struct {
	bun.BaseModel `bun:"table:guild_permissions,alias:gp"`

	ID      int64     `bun:"id,pk,autoincrement"`
	GuildID string    `bun:"guild_id,notnull,type:varchar(20)"`
	UserID  string    `bun:"user_id,notnull,type:varchar(20)"`
	AddedBy string    `bun:"added_by,nullzero,type:varchar(20)"`
	AddedAt time.Time `bun:"added_at,nullzero,notnull,default:current_timestamp"`
}

// AdministratorRow is one global dashboard administrator.
type AdministratorRow struct {
	bun.BaseModel `bun:"table:administrators,alias:a"`

	UserID  string    `bun:"user_id,pk,notnull,type:varchar(20)"`
	AddedBy string    `bun:"added_by,nullzero,type:varchar(20)"`
	Role    string    `bun:"role,notnull,default:'admin',type:varchar(32)"`
	AddedAt time.Time `bun:"added_at,nullzero,notnull,default:current_timestamp"`
}

// toRow folds a domain config into its row shape.
func toRow(cfg *guilddomain.ServerConfig) *GuildConfigRow {
	if cfg == nil {
		return nil
	}
	return &GuildConfigRow{
		GuildID:    cfg.GuildID,
		Prefix:     cfg.Prefix,
		BotPresent: cfg.BotPresent,
		LastSeen:   cfg.LastSeen,
		Modules:    cfg.Modules,
		Stats: StatsBlob{
			CommandsExecuted:   cfg.Stats.CommandsExecuted,
			CommandsByCategory: cfg.Stats.CommandsByCategory,
			LastCommandTime:    cfg.Stats.LastCommandTime,
			UniqueUsers:        cfg.Stats.UniqueUsers,
			Nickname:           cfg.Nickname,
			Notifications:      cfg.Notifications,
		},
	}
}

// fromRow unfolds a row back into the domain config, normalized.
func fromRow(row *GuildConfigRow) *guilddomain.ServerConfig {
	if row == nil {
		return nil
	}
	cfg := &guilddomain.ServerConfig{
		GuildID:       row.GuildID,
		Prefix:        row.Prefix,
		Nickname:      row.Stats.Nickname,
		BotPresent:    row.BotPresent,
		LastSeen:      row.LastSeen,
		Modules:       row.Modules,
		Notifications: row.Stats.Notifications,
		Stats: guilddomain.UsageStats{
			CommandsExecuted:   row.Stats.CommandsExecuted,
			CommandsByCategory: row.Stats.CommandsByCategory,
			LastCommandTime:    row.Stats.LastCommandTime,
			UniqueUsers:        row.Stats.UniqueUsers,
		},
	}
	cfg.Normalize()
	return cfg
}
