package guildstorage

import (
	"context"
	"errors"

	guilddomain "github.com/parlor-gg/guildboard/app/modules/guildconfig/domain"
)

// ErrNotFound indicates the requested record does not exist in the backend.
var ErrNotFound = errors.New("record not found")

// Backend is the persistence contract the config service runs against. It is
// chosen once at process start; business logic never branches on which
// implementation is behind it.
//
// Error semantics:
//   - GetConfig returns ErrNotFound when no record exists for the guild.
//   - Write methods return the backend's error unwrapped; the service layer is
//     responsible for classifying it for callers.
//   - All methods honor ctx for cancellation and pool/IO timeouts.
type Backend interface {
	// GetConfig loads one guild record, normalized to the in-memory invariants.
	GetConfig(ctx context.Context, guildID string) (*guilddomain.ServerConfig, error)

	// SaveConfig creates or replaces the record for config.GuildID.
	// The write must be atomic at record granularity.
	SaveConfig(ctx context.Context, config *guilddomain.ServerConfig) error

	// ListConfigs returns every stored guild record.
	ListConfigs(ctx context.Context) ([]*guilddomain.ServerConfig, error)

	// ListAdministrators returns the global administrator list.
	ListAdministrators(ctx context.Context) ([]guilddomain.Administrator, error)

	// PutAdministrator inserts or updates a global administrator.
	PutAdministrator(ctx context.Context, admin guilddomain.Administrator) error

	// DeleteAdministrator removes a global administrator.
	// Returns ErrNotFound if the user is not an administrator.
	DeleteAdministrator(ctx context.Context, userID string) error

	// ListPermissions returns the per-guild configuration permissions.
	ListPermissions(ctx context.Context, guildID string) ([]guilddomain.Permission, error)

	// GrantPermission adds a per-guild permission; granting an existing one is
	// a no-op.
	GrantPermission(ctx context.Context, guildID string, perm guilddomain.Permission) error

	// RevokePermission removes a per-guild permission.
	// Returns ErrNotFound if the user holds no permission for the guild.
	RevokePermission(ctx context.Context, guildID string, userID string) error

	// Close releases backend resources.
	Close() error
}
