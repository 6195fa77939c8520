package bunstore

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations holds the schema history. Registrations run in order at startup;
// each migration pairs an up with a down.
var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.NewCreateTable().Model((*GuildConfigRow)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("create guild_configs: %w", err)
			}
			if _, err := db.NewCreateTable().Model((*AdministratorRow)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("create administrators: %w", err)
			}
			if _, err := db.NewCreateTable().
				Model((*PermissionRow)(nil)).
				IfNotExists().
				ForeignKey(`("guild_id") REFERENCES "guild_configs" ("guild_id") ON DELETE CASCADE`).
				Exec(ctx); err != nil {
				return fmt.Errorf("create guild_permissions: %w", err)
			}
			if _, err := db.NewCreateIndex().
				Model((*PermissionRow)(nil)).
				Index("guild_permissions_guild_user_idx").
				Unique().
				IfNotExists().
				Column("guild_id", "user_id").
				Exec(ctx); err != nil {
				return fmt.Errorf("create guild_permissions unique index: %w", err)
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			for _, model := range []any{
				(*PermissionRow)(nil),
				(*AdministratorRow)(nil),
				(*GuildConfigRow)(nil),
			} {
				if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	)
}

// runMigrations applies any pending migrations.
func runMigrations(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return err
	}
	return nil
}
