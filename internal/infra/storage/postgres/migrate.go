package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// migrations returns the migration source and the directory goose reads
// inside it.
func (db *DB) migrations() (fs.FS, string) {
	if db.migrationsDir != "" {
		return os.DirFS(db.migrationsDir), "."
	}
	return embeddedMigrations, "migrations"
}

func (db *DB) setupGoose() (string, error) {
	fsys, dir := db.migrations()
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect("postgres"); err != nil {
		return "", fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return dir, nil
}

// Migrate applies all pending migrations.
func (db *DB) Migrate(ctx context.Context) error {
	dir, err := db.setupGoose()
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.DB.DB, dir); err != nil {
		return fmt.Errorf("failed to migrate db: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func (db *DB) MigrateDown(ctx context.Context) error {
	dir, err := db.setupGoose()
	if err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db.DB.DB, dir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// MigrationStatus logs the state of every migration.
func (db *DB) MigrationStatus(ctx context.Context) error {
	dir, err := db.setupGoose()
	if err != nil {
		return err
	}
	return goose.StatusContext(ctx, db.DB.DB, dir)
}
