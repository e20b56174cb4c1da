package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"household-ledger/internal/config"
	"household-ledger/internal/database"
	"household-ledger/internal/repositories"
	"household-ledger/internal/services"
)

const defaultDemoDays = 90

func newSeedCommand() *cobra.Command {
	var demoTransactions int
	var days int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the default categories and optional demo transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if demoTransactions < 0 {
				return fmt.Errorf("--demo-transactions must not be negative")
			}
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}

			cfg := config.Load()
			logger := newLogger(&cfg.Server, os.Stderr)

			db, err := database.Initialize(cfg)
			if err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}
			defer db.Close()

			return seedLedger(cmd.Context(), db.DB, seedOptions{
				demoTransactions: demoTransactions,
				days:             days,
				seed:             uint64(time.Now().UnixNano()),
			}, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().IntVar(&demoTransactions, "demo-transactions", 0, "also generate this many random transactions")
	cmd.Flags().IntVar(&days, "days", defaultDemoDays, "spread demo transactions over this many trailing days")

	return cmd
}

type seedOptions struct {
	demoTransactions int
	days             int
	seed             uint64
}

func seedLedger(ctx context.Context, db *gorm.DB, opts seedOptions, out io.Writer, logger *slog.Logger) error {
	categoryRepo := repositories.NewCategoryRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)

	created, err := services.NewCategoryService(categoryRepo, transactionRepo, nil, logger).SeedDefaults(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Default categories created: %d\n", created)

	if opts.demoTransactions == 0 {
		return nil
	}

	demo := services.NewDemoDataService(categoryRepo, transactionRepo, services.NewTransactionGenerator(opts.seed), logger)
	generated, err := demo.GenerateTransactions(ctx, opts.days, opts.demoTransactions)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Demo transactions created: %d (last %d days)\n", generated, opts.days)
	return nil
}
