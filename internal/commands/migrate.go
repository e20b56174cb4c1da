package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"household-ledger/internal/config"
	"household-ledger/internal/database"
)

func newMigrateCommand() *cobra.Command {
	var down int
	var seed bool
	var migrationsDir string
	var seedsDir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			sqlDB, err := database.OpenSQL(&cfg.Database)
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			runner := database.NewMigrationRunner(sqlDB).WithPaths(migrationsDir, seedsDir)
			if err := runner.WaitForDatabase(); err != nil {
				return err
			}

			if down > 0 {
				if err := runner.RollbackMigrations(down); err != nil {
					return err
				}
			} else {
				if err := runner.RunMigrations(); err != nil {
					return err
				}
			}

			if seed {
				if err := runner.LoadSeeds(); err != nil {
					return err
				}
			}

			version, dirty, err := runner.GetMigrationStatus()
			if err != nil {
				return fmt.Errorf("reading migration status: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migration version: %d (dirty: %v)\n", version, dirty)
			return nil
		},
	}

	cmd.Flags().IntVar(&down, "down", 0, "roll back this many migrations instead of migrating up")
	cmd.Flags().BoolVar(&seed, "seed", false, "load the SQL seed files after migrating")
	cmd.Flags().StringVar(&migrationsDir, "migrations", "db/migrations", "migrations directory")
	cmd.Flags().StringVar(&seedsDir, "seeds", "db/seeds", "seed files directory")

	return cmd
}
