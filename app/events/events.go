// Package events defines the topics and payloads exchanged with the bot
// process over the event bus.
package events

import "time"

// Topics. The dashboard publishes config updates and consumes command
// executions.
const (
	TopicConfigUpdated   = "guildconfig.updated"
	TopicCommandExecuted = "bot.command.executed"
)

// ConfigUpdated tells the bot to refresh its cached view of one guild. Field
// names the part that changed ("prefix", "modules", "notifications.memberJoin").
type ConfigUpdated struct {
	GuildID   string    `json:"guildId"`
	Field     string    `json:"field"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommandExecuted is emitted by the bot after every command run and feeds the
// usage statistics.
type CommandExecuted struct {
	GuildID     string `json:"guildId"`
	CommandName string `json:"commandName"`
	Category    string `json:"category"`
	UserID      string `json:"userId"`
}
