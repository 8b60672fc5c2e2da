package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/masudbs-23/hisab-app/internal/cli"
	"github.com/masudbs-23/hisab-app/internal/inbox"
	"github.com/masudbs-23/hisab-app/internal/services"
	"github.com/masudbs-23/hisab-app/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting hisab-worker",
		"interval", cfg.SyncInterval, "batch_size", cfg.SyncBatchSize)

	email := os.Getenv("HISAB_USER_EMAIL")
	if email == "" {
		logger.Error("HISAB_USER_EMAIL is not set")
		os.Exit(1)
	}

	repo := cli.OpenRepository(logger, cfg)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	user, err := repo.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrUserNotFound) {
		logger.Error("No such account; register through the app first", "email", email)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Failed to look up account", "error", err)
		os.Exit(1)
	}

	sync := services.NewSyncService(repo, inbox.NewFileSource(cfg.InboxPath))
	sync.SetBatchSize(cfg.SyncBatchSize)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()

		for {
			if res, err := sync.Sync(ctx, user.ID, 0); err != nil {
				logger.Error("Periodic sync failed", "error", err)
			} else if res.TransactionsCommitted > 0 {
				logger.Info("Periodic sync committed transactions",
					"committed", res.TransactionsCommitted,
					"messages_seen", res.MessagesSeen)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
