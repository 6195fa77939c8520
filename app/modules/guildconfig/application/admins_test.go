package guildservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAdministrator(t *testing.T) {
	store := newFakeBackend()
	svc := newTestService(store, WithOwner("owner-1"))
	ctx := context.Background()

	require.NoError(t, svc.AddAdministrator(ctx, "owner-1", "admin-1", "admin"))

	tests := []struct {
		name   string
		userID string
		want   bool
	}{
		{name: "owner", userID: "owner-1", want: true},
		{name: "stored administrator", userID: "admin-1", want: true},
		{name: "regular user", userID: "user-1", want: false},
		{name: "empty id", userID: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.IsAdministrator(ctx, tt.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddAdministrator_RequiresAdministrator(t *testing.T) {
	store := newFakeBackend()
	svc := newTestService(store, WithOwner("owner-1"))
	ctx := context.Background()

	err := svc.AddAdministrator(ctx, "user-1", "user-2", "admin")
	require.Error(t, err)
	assert.Equal(t, KindNotAuthorized, KindOf(err))
	assert.NotContains(t, store.calls, "PutAdministrator")
}

func TestAddAdministrator_DefaultsRole(t *testing.T) {
	store := newFakeBackend()
	svc := newTestService(store, WithOwner("owner-1"))
	ctx := context.Background()

	require.NoError(t, svc.AddAdministrator(ctx, "owner-1", "admin-1", ""))

	admins, err := svc.ListAdministrators(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin-1", admins[0].UserID)
	assert.Equal(t, "owner-1", admins[0].AddedBy)
	assert.Equal(t, "admin", admins[0].Role)
}

func TestAddAdministrator_EmptyUserRejected(t *testing.T) {
	store := newFakeBackend()
	svc := newTestService(store, WithOwner("owner-1"))

	err := svc.AddAdministrator(context.Background(), "owner-1", "", "admin")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestRemoveAdministrator(t *testing.T) {
	store := newFakeBackend()
	svc := newTestService(store, WithOwner("owner-1"))
	ctx := context.Background()

	require.NoError(t, svc.AddAdministrator(ctx, "owner-1", "admin-1", "admin"))
	require.NoError(t, svc.RemoveAdministrator(ctx, "owner-1", "admin-1"))

	admins, err := svc.ListAdministrators(ctx)
	require.NoError(t, err)
	assert.Empty(t, admins)

	// Removing again reports absence.
	err = svc.RemoveAdministrator(ctx, "owner-1", "admin-1")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestAuthorize(t *testing.T) {
	store := newFakeBackend()
	svc := newTestService(store, WithOwner("owner-1"))
	ctx := context.Background()

	require.NoError(t, svc.GrantPermission(ctx, "owner-1", "guild-1", "user-1"))

	tests := []struct {
		name    string
		guildID string
		userID  string
		want    bool
	}{
		{name: "owner everywhere", guildID: "guild-2", userID: "owner-1", want: true},
		{name: "permitted user on their guild", guildID: "guild-1", userID: "user-1", want: true},
		{name: "permitted user on another guild", guildID: "guild-2", userID: "user-1", want: false},
		{name: "stranger", guildID: "guild-1", userID: "user-9", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authorize(ctx, tt.guildID, tt.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGrantPermission_RequiresGuildAccess(t *testing.T) {
	store := newFakeBackend()
	svc := newTestService(store, WithOwner("owner-1"))
	ctx := context.Background()

	err := svc.GrantPermission(ctx, "user-1", "guild-1", "user-2")
	require.Error(t, err)
	assert.Equal(t, KindNotAuthorized, KindOf(err))
}

func TestGrantPermission_PermittedUserCanDelegate(t *testing.T) {
	store := newFakeBackend()
	svc := newTestService(store, WithOwner("owner-1"))
	ctx := context.Background()

	require.NoError(t, svc.GrantPermission(ctx, "owner-1", "guild-1", "user-1"))
	require.NoError(t, svc.GrantPermission(ctx, "user-1", "guild-1", "user-2"))

	perms, err := svc.ListPermissions(ctx, "guild-1")
	require.NoError(t, err)
	assert.Len(t, perms, 2)
}

func TestGrantPermission_Idempotent(t *testing.T) {
	store := newFakeBackend()
	svc := newTestService(store, WithOwner("owner-1"))
	ctx := context.Background()

	require.NoError(t, svc.GrantPermission(ctx, "owner-1", "guild-1", "user-1"))
	require.NoError(t, svc.GrantPermission(ctx, "owner-1", "guild-1", "user-1"))

	perms, err := svc.ListPermissions(ctx, "guild-1")
	require.NoError(t, err)
	assert.Len(t, perms, 1)
}

func TestRevokePermission(t *testing.T) {
	store := newFakeBackend()
	svc := newTestService(store, WithOwner("owner-1"))
	ctx := context.Background()

	require.NoError(t, svc.GrantPermission(ctx, "owner-1", "guild-1", "user-1"))
	require.NoError(t, svc.RevokePermission(ctx, "owner-1", "guild-1", "user-1"))

	ok, err := svc.Authorize(ctx, "guild-1", "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	err = svc.RevokePermission(ctx, "owner-1", "guild-1", "user-1")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}
