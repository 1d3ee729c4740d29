package system

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/avicenna-clinic/avicenna_backend/config"
	"github.com/avicenna-clinic/avicenna_backend/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			dbCfg := database.FromCentralConfig(cfg.Database)
			pool, err := database.NewPool(ctx, dbCfg)
			if err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}
			defer pool.Close()

			fmt.Println("Running migrations.")
			if err := database.Migrate(ctx, pool, dbCfg); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			version, err := database.MigrationVersion(ctx, pool)
			if err != nil {
				return fmt.Errorf("failed to read migration version: %w", err)
			}
			fmt.Printf("Migrations executed successfully, schema version %d.\n", version)
			return nil
		},
	}

	return cmd
}
