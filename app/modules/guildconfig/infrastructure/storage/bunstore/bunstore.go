// Package bunstore implements the persistence backend over Postgres using
// uptrace/bun. One row per guild plus side tables for per-guild permissions
// and global administrators.
package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	guilddomain "github.com/parlor-gg/guildboard/app/modules/guildconfig/domain"
	guildstorage "github.com/parlor-gg/guildboard/app/modules/guildconfig/infrastructure/storage"
)

const (
	maxOpenConns = 10
	connTimeout  = 5 * time.Second
)

// Store implements guildstorage.Backend over a bun.DB.
type Store struct {
	db     *bun.DB
	logger *slog.Logger
}

var _ guildstorage.Backend = (*Store)(nil)

// New connects to Postgres, verifies the connection and brings the schema up
// to date. A failure here is the caller's cue to fall back to the file store.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(connTimeout),
	))
	sqldb.SetMaxOpenConns(maxOpenConns)

	pingCtx, cancel := context.WithTimeout(ctx, connTimeout)
	defer cancel()
	if err := sqldb.PingContext(pingCtx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("bunstore: ping database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("bunstore: migrate: %w", err)
	}

	logger.InfoContext(ctx, "relational backend initialized")
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) GetConfig(ctx context.Context, guildID string) (*guilddomain.ServerConfig, error) {
	row := new(GuildConfigRow)
	err := s.db.NewSelect().Model(row).Where("guild_id = ?", guildID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, guildstorage.ErrNotFound
		}
		return nil, err
	}
	return fromRow(row), nil
}

func (s *Store) SaveConfig(ctx context.Context, config *guilddomain.ServerConfig) error {
	row := toRow(config)
	row.UpdatedAt = time.Now().UTC()
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("prefix = EXCLUDED.prefix").
		Set("bot_present = EXCLUDED.bot_present").
		Set("last_seen = EXCLUDED.last_seen").
		Set("modules = EXCLUDED.modules").
		Set("stats = EXCLUDED.stats").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) ListConfigs(ctx context.Context) ([]*guilddomain.ServerConfig, error) {
	var rows []GuildConfigRow
	if err := s.db.NewSelect().Model(&rows).Order("guild_id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]*guilddomain.ServerConfig, 0, len(rows))
	for i := range rows {
		out = append(out, fromRow(&rows[i]))
	}
	return out, nil
}

func (s *Store) ListAdministrators(ctx context.Context) ([]guilddomain.Administrator, error) {
	var rows []AdministratorRow
	if err := s.db.NewSelect().Model(&rows).Order("added_at ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]guilddomain.Administrator, 0, len(rows))
	for _, r := range rows {
		out = append(out, guilddomain.Administrator{
			UserID:  r.UserID,
			AddedBy: r.AddedBy,
			Role:    r.Role,
			AddedAt: r.AddedAt,
		})
	}
	return out, nil
}

func (s *Store) PutAdministrator(ctx context.Context, admin guilddomain.Administrator) error {
	row := &AdministratorRow{
		UserID:  admin.UserID,
		AddedBy: admin.AddedBy,
		Role:    admin.Role,
		AddedAt: admin.AddedAt,
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("added_by = EXCLUDED.added_by").
		Set("role = EXCLUDED.role").
		Exec(ctx)
	return err
}

func (s *Store) DeleteAdministrator(ctx context.Context, userID string) error {
	res, err := s.db.NewDelete().
		Model((*AdministratorRow)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return guildstorage.ErrNotFound
	}
	return nil
}

func (s *Store) ListPermissions(ctx context.Context, guildID string) ([]guilddomain.Permission, error) {
	var rows []PermissionRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("guild_id = ?", guildID).
		Order("added_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]guilddomain.Permission, 0, len(rows))
	for _, r := range rows {
		out = append(out, guilddomain.Permission{
			UserID:  r.UserID,
			AddedBy: r.AddedBy,
			AddedAt: r.AddedAt,
		})
	}
	return out, nil
}

func (s *Store) GrantPermission(ctx context.Context, guildID string, perm guilddomain.Permission) error {
	// The guild row must exist first so the FK holds; the service always
	// touches the config before granting, but a direct grant on a fresh guild
	// is still legal.
	if _, err := s.GetConfig(ctx, guildID); errors.Is(err, guildstorage.ErrNotFound) {
		if err := s.SaveConfig(ctx, guilddomain.DefaultConfig(guildID)); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	row := &PermissionRow{
		GuildID: guildID,
		UserID:  perm.UserID,
		AddedBy: perm.AddedBy,
		AddedAt: perm.AddedAt,
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (guild_id, user_id) DO NOTHING").
		Exec(ctx)
	return err
}

func (s *Store) RevokePermission(ctx context.Context, guildID string, userID string) error {
	res, err := s.db.NewDelete().
		Model((*PermissionRow)(nil)).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return guildstorage.ErrNotFound
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
