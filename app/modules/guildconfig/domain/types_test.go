package guilddomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("guild-1")

	assert.Equal(t, "guild-1", cfg.GuildID)
	assert.Equal(t, "!", cfg.Prefix)
	assert.Empty(t, cfg.Nickname)
	assert.False(t, cfg.BotPresent)

	assert.Equal(t, map[string]bool{
		ModuleModeration: true,
		ModuleFun:        true,
		ModuleUtility:    true,
		ModuleMusic:      false,
	}, cfg.Modules)

	require.Contains(t, cfg.Notifications, KindMemberJoin)
	require.Contains(t, cfg.Notifications, KindMemberLeave)
	assert.False(t, cfg.Notifications[KindMemberJoin].Enabled)
	assert.False(t, cfg.Notifications[KindMemberLeave].Enabled)

	assert.Zero(t, cfg.Stats.CommandsExecuted)
	for _, cat := range KnownCategories {
		assert.Contains(t, cfg.Stats.CommandsByCategory, cat)
	}
	assert.Equal(t, 0, cfg.Stats.UniqueUsers.Len())
}

func TestKnownModule(t *testing.T) {
	for _, m := range KnownModules {
		assert.True(t, KnownModule(m), m)
	}
	assert.False(t, KnownModule("gambling"))
	assert.False(t, KnownModule(""))
	assert.False(t, KnownModule("Moderation"))
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, ModuleFun, NormalizeCategory(ModuleFun))
	assert.Equal(t, CategoryOther, NormalizeCategory(CategoryOther))
	assert.Equal(t, CategoryOther, NormalizeCategory("novelty"))
	assert.Equal(t, CategoryOther, NormalizeCategory(""))
}

func TestNormalize_RepairsPartialRecord(t *testing.T) {
	cfg := &ServerConfig{
		GuildID: "guild-1",
		Prefix:  "?",
		Modules: map[string]bool{
			ModuleMusic: true,
			"gambling":  true, // stale key from an old record
		},
	}
	cfg.Normalize()

	// Missing toggles come back at their defaults, stale keys are dropped.
	assert.Equal(t, map[string]bool{
		ModuleModeration: true,
		ModuleFun:        true,
		ModuleUtility:    true,
		ModuleMusic:      true,
	}, cfg.Modules)

	require.NotNil(t, cfg.Notifications[KindMemberJoin])
	require.NotNil(t, cfg.Notifications[KindMemberLeave])

	for _, cat := range KnownCategories {
		assert.Contains(t, cfg.Stats.CommandsByCategory, cat)
	}
	assert.NotNil(t, cfg.Stats.UniqueUsers)
}

func TestNormalize_KeepsExistingData(t *testing.T) {
	cfg := DefaultConfig("guild-1")
	cfg.Modules[ModuleFun] = false
	cfg.Notifications[KindMemberJoin] = &NotificationTemplate{Enabled: true, Message: "hi"}
	cfg.Stats.CommandsByCategory[ModuleFun] = 7
	cfg.Stats.UniqueUsers.Add("user-1")

	cfg.Normalize()

	assert.False(t, cfg.Modules[ModuleFun])
	assert.Equal(t, "hi", cfg.Notifications[KindMemberJoin].Message)
	assert.Equal(t, int64(7), cfg.Stats.CommandsByCategory[ModuleFun])
	assert.True(t, cfg.Stats.UniqueUsers.Has("user-1"))
}

func TestNormalize_DropsUnknownNotificationKinds(t *testing.T) {
	cfg := DefaultConfig("guild-1")
	cfg.Notifications["memberBoost"] = &NotificationTemplate{Enabled: true}

	cfg.Normalize()

	assert.NotContains(t, cfg.Notifications, NotificationKind("memberBoost"))
	assert.Len(t, cfg.Notifications, 2)
}
