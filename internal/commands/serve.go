package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"household-ledger/internal/config"
	"household-ledger/internal/database"
	"household-ledger/internal/messaging"
	"household-ledger/internal/server"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(&cfg.Server, os.Stdout)
	slog.SetDefault(logger)

	db, err := database.Initialize(cfg)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	publisher, err := messaging.NewPublisher(cfg.Messaging.AMQPURL, cfg.Messaging.Exchange)
	if err != nil {
		logger.Warn("Event publisher unavailable, ledger events disabled", "error", err)
		publisher = messaging.NopPublisher{}
	}
	defer publisher.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.New(server.Options{
		Config:    cfg,
		DB:        db.DB,
		Publisher: publisher,
		Logger:    logger,
	}).Run(ctx)
}
