package guilddomain

import "time"

// NotificationKind identifies one of the two notification slots every guild has.
type NotificationKind string

const (
	KindMemberJoin  NotificationKind = "memberJoin"
	KindMemberLeave NotificationKind = "memberLeave"
)

// KnownKind reports whether k is one of the two supported notification kinds.
func KnownKind(k NotificationKind) bool {
	return k == KindMemberJoin || k == KindMemberLeave
}

// The fixed set of toggleable bot modules.
const (
	ModuleModeration = "moderation"
	ModuleFun        = "fun"
	ModuleUtility    = "utility"
	ModuleMusic      = "music"
)

// CategoryOther absorbs command categories outside the known set.
const CategoryOther = "other"

// KnownModules lists every module name a guild config carries, in display order.
var KnownModules = []string{ModuleModeration, ModuleFun, ModuleUtility, ModuleMusic}

// KnownCategories lists every stats category, in display order.
var KnownCategories = []string{ModuleModeration, ModuleFun, ModuleUtility, ModuleMusic, CategoryOther}

// KnownModule reports whether name is one of the four toggleable modules.
func KnownModule(name string) bool {
	for _, m := range KnownModules {
		if m == name {
			return true
		}
	}
	return false
}

// NormalizeCategory maps an arbitrary category name onto the known set.
func NormalizeCategory(category string) string {
	for _, c := range KnownCategories {
		if c == category {
			return category
		}
	}
	return CategoryOther
}

// ServerConfig is the full per-guild configuration record. It is the single
// source of truth for everything the dashboard can change about a guild.
type ServerConfig struct {
	GuildID    string     `json:"guildId"`
	Prefix     string     `json:"prefix"`
	Nickname   string     `json:"nickname,omitempty"`
	BotPresent bool       `json:"botPresent"`
	LastSeen   *time.Time `json:"lastSeen,omitempty"`

	Modules       map[string]bool                            `json:"modules"`
	Notifications map[NotificationKind]*NotificationTemplate `json:"notifications"`
	Stats         UsageStats                                 `json:"stats"`
}

// NotificationTemplate is one stored join or leave message. Message and Embed
// are independent; a template may carry either or both.
type NotificationTemplate struct {
	Enabled   bool   `json:"enabled"`
	ChannelID string `json:"channelId,omitempty"`
	Message   string `json:"message,omitempty"`
	Embed     *Embed `json:"embed,omitempty"`
	// DeleteAfter is the auto-delete delay in seconds, 0 meaning never.
	DeleteAfter int `json:"deleteAfter"`
}

// Embed is the stored rich-message template. Absent sub-parts stay nil and are
// never rendered as empty shells.
type Embed struct {
	Color       int          `json:"color,omitempty"`
	Author      *EmbedAuthor `json:"author,omitempty"`
	Title       string       `json:"title,omitempty"`
	TitleURL    string       `json:"titleUrl,omitempty"`
	Description string       `json:"description,omitempty"`
	Image       *EmbedMedia  `json:"image,omitempty"`
	Thumbnail   *EmbedMedia  `json:"thumbnail,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

type EmbedAuthor struct {
	Name    string `json:"name,omitempty"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon,omitempty"`
}

type EmbedMedia struct {
	URL string `json:"url,omitempty"`
}

type EmbedFooter struct {
	Text    string `json:"text,omitempty"`
	IconURL string `json:"icon,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// UsageStats holds the live counters for a guild.
type UsageStats struct {
	CommandsExecuted   int64            `json:"commandsExecuted"`
	CommandsByCategory map[string]int64 `json:"commandsByCategory"`
	LastCommandTime    *time.Time       `json:"lastCommandTime,omitempty"`
	UniqueUsers        UserSet          `json:"uniqueUsers"`
}

// Administrator is a global dashboard operator, a separate privilege tier from
// per-guild permissions.
type Administrator struct {
	UserID  string    `json:"userId"`
	AddedBy string    `json:"addedBy"`
	Role    string    `json:"role"`
	AddedAt time.Time `json:"addedAt"`
}

// Permission grants one user the right to configure one guild.
type Permission struct {
	UserID  string    `json:"userId"`
	AddedBy string    `json:"addedBy,omitempty"`
	AddedAt time.Time `json:"addedAt"`
}

// DefaultPrefix is the command trigger a fresh guild starts with.
const DefaultPrefix = "!"

// MaxPrefixLen and MaxNicknameLen bound the user-settable strings, in runes.
const (
	MaxPrefixLen   = 5
	MaxNicknameLen = 32
)

func defaultModules() map[string]bool {
	return map[string]bool{
		ModuleModeration: true,
		ModuleFun:        true,
		ModuleUtility:    true,
		ModuleMusic:      false,
	}
}

func defaultStats() UsageStats {
	byCategory := make(map[string]int64, len(KnownCategories))
	for _, c := range KnownCategories {
		byCategory[c] = 0
	}
	return UsageStats{
		CommandsByCategory: byCategory,
		UniqueUsers:        NewUserSet(),
	}
}

// DefaultConfig returns the record a guild implicitly starts with on first
// access: prefix "!", module defaults, both notification kinds disabled and
// zeroed stats.
func DefaultConfig(guildID string) *ServerConfig {
	return &ServerConfig{
		GuildID: guildID,
		Prefix:  DefaultPrefix,
		Modules: defaultModules(),
		Notifications: map[NotificationKind]*NotificationTemplate{
			KindMemberJoin:  {},
			KindMemberLeave: {},
		},
		Stats: defaultStats(),
	}
}

// Normalize repairs a config loaded from any backend so the in-memory
// invariants hold: all four module keys present, both notification kinds
// present, all category counters present and the unique-user set non-nil.
// Unknown module keys picked up from old records are dropped.
func (c *ServerConfig) Normalize() {
	modules := defaultModules()
	for name := range modules {
		if v, ok := c.Modules[name]; ok {
			modules[name] = v
		}
	}
	c.Modules = modules

	if c.Notifications == nil {
		c.Notifications = make(map[NotificationKind]*NotificationTemplate, 2)
	}
	for _, kind := range []NotificationKind{KindMemberJoin, KindMemberLeave} {
		if c.Notifications[kind] == nil {
			c.Notifications[kind] = &NotificationTemplate{}
		}
	}
	for kind := range c.Notifications {
		if !KnownKind(kind) {
			delete(c.Notifications, kind)
		}
	}

	if c.Stats.CommandsByCategory == nil {
		c.Stats.CommandsByCategory = make(map[string]int64, len(KnownCategories))
	}
	for _, cat := range KnownCategories {
		if _, ok := c.Stats.CommandsByCategory[cat]; !ok {
			c.Stats.CommandsByCategory[cat] = 0
		}
	}
	if c.Stats.UniqueUsers == nil {
		c.Stats.UniqueUsers = NewUserSet()
	}
}
