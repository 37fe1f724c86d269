package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/rental-pricing/pkg/config"
	"github.com/angelmondragon/rental-pricing/pkg/db"
	"github.com/angelmondragon/rental-pricing/pkg/logger"
)

// MaybeRunDev applies the directory read-model migrations on boot when running in
// dev, the auto-migrate flag is on and the directory is served from the database.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate || !cfg.Directory.UsesDB() {
		return nil
	}
	if client == nil {
		return fmt.Errorf("database client is required for auto-migrate")
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "running goose migrations (dev auto-run)")

	results, err := Up(ctx, sqlDB, Embedded())
	if err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(logg.WithField(ctx, "applied", len(results)), "goose migrations completed")
	return nil
}
