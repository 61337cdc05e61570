package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/financefusion/api/migrations"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// OpenSQL returns a database/sql handle sharing the pool's connection
// settings. goose only speaks database/sql.
func (db *DB) OpenSQL() *sql.DB {
	return stdlib.OpenDB(*db.Pool.Config().ConnConfig)
}

// NewMigrator builds a goose provider over the embedded migrations.
func NewMigrator(sqlDB *sql.DB) (*goose.Provider, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// Migrate applies all pending migrations.
func (db *DB) Migrate(ctx context.Context) error {
	sqlDB := db.OpenSQL()
	defer sqlDB.Close()

	provider, err := NewMigrator(sqlDB)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	for _, r := range results {
		db.logger.Info("migration applied",
			slog.Int64("version", r.Source.Version),
			slog.String("file", r.Source.Path),
			slog.Duration("duration", r.Duration),
		)
	}
	return nil
}
