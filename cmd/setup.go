package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/favtunes/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file from the embedded template when missing and initializes storage.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("using existing config", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.writePlain("%s config written to %s\n", styles.OK("✓"), configPath)
	}

	config, err := shared.ResolveConfig(configPath)
	if err != nil {
		return err
	}

	if cmd.Bool("rollback") {
		return r.rollback(config)
	}

	switch config.Storage.Driver {
	case "sqlite":
		r.logger.Info("initializing database", "path", config.Storage.Path)
		db, err := r.openDatabase(config.Storage.Path)
		if err != nil {
			return err
		}
		db.Close()
		r.writePlain("%s database ready at %s\n", styles.OK("✓"), config.Storage.Path)
	case "file":
		r.writePlain("%s users will be stored in %s\n", styles.OK("✓"), config.Storage.Path)
	default:
		return fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, config.Storage.Driver)
	}

	if err := config.Validate(); err != nil {
		r.writePlain("\n%s %v\n", styles.Warn("!"), err)
		r.writePlain("%s\n", styles.Help("Set credentials.spotify in the config or export SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET."))
		return nil
	}

	r.writePlain("\n%s\n", styles.Help("Run 'favtunes serve' to start the API."))
	return nil
}

// rollback reverts the most recent migration of the sqlite store.
func (r *Runner) rollback(config *shared.Config) error {
	if config.Storage.Driver != "sqlite" {
		return fmt.Errorf("%w: rollback needs storage.driver = \"sqlite\", got %q", shared.ErrInvalidConfig, config.Storage.Driver)
	}

	db, err := shared.NewDatabase(config.Storage.Path)
	if err != nil {
		return fmt.Errorf("%w: failed to open database: %v", shared.ErrStorage, err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	r.logger.Info("migration rolled back", "path", config.Storage.Path)
	r.writePlain("%s rolled back the latest migration in %s\n", styles.OK("✓"), config.Storage.Path)
	return nil
}
