package guildservice

import (
	"context"
	"errors"

	guilddomain "github.com/parlor-gg/guildboard/app/modules/guildconfig/domain"
	guildstorage "github.com/parlor-gg/guildboard/app/modules/guildconfig/infrastructure/storage"
)

// ListAdministrators returns the global administrator list.
func (s *GuildConfigService) ListAdministrators(ctx context.Context) ([]guilddomain.Administrator, error) {
	admins, err := s.store.ListAdministrators(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list_administrators", Err: err}
	}
	return admins, nil
}

// IsAdministrator reports whether userID is a global administrator. The
// configured owner always is.
func (s *GuildConfigService) IsAdministrator(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	if s.ownerID != "" && userID == s.ownerID {
		return true, nil
	}
	admins, err := s.store.ListAdministrators(ctx)
	if err != nil {
		return false, &StorageError{Op: "is_administrator", Err: err}
	}
	for _, a := range admins {
		if a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// AddAdministrator grants global administrator status. Only an existing
// administrator may do this.
func (s *GuildConfigService) AddAdministrator(ctx context.Context, actorID, userID, role string) error {
	if userID == "" {
		return &ValidationError{Field: "userId", Reason: "must not be empty"}
	}
	if ok, err := s.IsAdministrator(ctx, actorID); err != nil {
		return err
	} else if !ok {
		return &NotAuthorizedError{UserID: actorID, Reason: "administrator access required"}
	}
	if role == "" {
		role = "admin"
	}
	admin := guilddomain.Administrator{
		UserID:  userID,
		AddedBy: actorID,
		Role:    role,
		AddedAt: s.now().UTC(),
	}
	if err := s.store.PutAdministrator(ctx, admin); err != nil {
		return &StorageError{Op: "add_administrator", Err: err}
	}
	s.metrics.RecordOperation("add_administrator", true)
	return nil
}

// RemoveAdministrator revokes global administrator status.
func (s *GuildConfigService) RemoveAdministrator(ctx context.Context, actorID, userID string) error {
	if ok, err := s.IsAdministrator(ctx, actorID); err != nil {
		return err
	} else if !ok {
		return &NotAuthorizedError{UserID: actorID, Reason: "administrator access required"}
	}
	if err := s.store.DeleteAdministrator(ctx, userID); err != nil {
		if errors.Is(err, guildstorage.ErrNotFound) {
			return ErrNotFound
		}
		return &StorageError{Op: "remove_administrator", Err: err}
	}
	s.metrics.RecordOperation("remove_administrator", true)
	return nil
}

// ListPermissions returns the users allowed to configure the guild.
func (s *GuildConfigService) ListPermissions(ctx context.Context, guildID string) ([]guilddomain.Permission, error) {
	perms, err := s.store.ListPermissions(ctx, guildID)
	if err != nil {
		return nil, &StorageError{Op: "list_permissions", Err: err}
	}
	return perms, nil
}

// GrantPermission lets actorID grant userID configuration access to the
// guild. The actor must itself be authorized for the guild.
func (s *GuildConfigService) GrantPermission(ctx context.Context, actorID, guildID, userID string) error {
	if userID == "" {
		return &ValidationError{Field: "userId", Reason: "must not be empty"}
	}
	if ok, err := s.Authorize(ctx, guildID, actorID); err != nil {
		return err
	} else if !ok {
		return &NotAuthorizedError{UserID: actorID, Reason: "no configuration access to this guild"}
	}
	perm := guilddomain.Permission{
		UserID:  userID,
		AddedBy: actorID,
		AddedAt: s.now().UTC(),
	}
	if err := s.store.GrantPermission(ctx, guildID, perm); err != nil {
		return &StorageError{Op: "grant_permission", Err: err}
	}
	s.metrics.RecordOperation("grant_permission", true)
	return nil
}

// RevokePermission removes userID's configuration access to the guild.
func (s *GuildConfigService) RevokePermission(ctx context.Context, actorID, guildID, userID string) error {
	if ok, err := s.Authorize(ctx, guildID, actorID); err != nil {
		return err
	} else if !ok {
		return &NotAuthorizedError{UserID: actorID, Reason: "no configuration access to this guild"}
	}
	if err := s.store.RevokePermission(ctx, guildID, userID); err != nil {
		if errors.Is(err, guildstorage.ErrNotFound) {
			return ErrNotFound
		}
		return &StorageError{Op: "revoke_permission", Err: err}
	}
	s.metrics.RecordOperation("revoke_permission", true)
	return nil
}

// Authorize reports whether userID may configure guildID.
func (s *GuildConfigService) Authorize(ctx context.Context, guildID, userID string) (bool, error) {
	if ok, err := s.IsAdministrator(ctx, userID); err != nil {
		return false, err
	} else if ok {
		return true, nil
	}
	perms, err := s.store.ListPermissions(ctx, guildID)
	if err != nil {
		return false, &StorageError{Op: "authorize", Err: err}
	}
	for _, p := range perms {
		if p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}
