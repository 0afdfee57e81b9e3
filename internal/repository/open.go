package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/config"
)

// Open connects the store named by cfg.Driver, applying PostgreSQL
// migrations first when cfg.Migrate is set.
func Open(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*Database, error) {
	switch cfg.Driver {
	case "postgres":
		if cfg.Migrate {
			version, err := Migrate(cfg.URL)
			if err != nil {
				return nil, err
			}
			log.Info().Uint("version", version).Msg("schema migrated")
		}
		db, err := NewDatabase(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info().Msg("connected to postgres")
		return db, nil
	case "sqlite":
		db, err := NewSQLiteDatabase(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite store")
		return db, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}
