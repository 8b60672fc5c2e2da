package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/masudbs-23/hisab-app/internal/cli"
	"github.com/masudbs-23/hisab-app/internal/inbox"
	"github.com/masudbs-23/hisab-app/internal/services"
	"github.com/masudbs-23/hisab-app/internal/storage"
)

func main() {
	email := flag.String("email", "", "account email to sync transactions for")
	cardID := flag.Int64("card", 0, "optional card id to attribute synced transactions to")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: hisab -email <address> [-card <id>]")
		os.Exit(2)
	}

	repo := cli.OpenRepository(logger, cfg)
	defer repo.Close()

	ctx := context.Background()

	user, err := repo.GetUserByEmail(ctx, *email)
	if errors.Is(err, storage.ErrUserNotFound) {
		logger.Error("No such account; register through the app first", "email", *email)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Failed to look up account", "error", err)
		os.Exit(1)
	}

	source := inbox.NewFileSource(cfg.InboxPath)
	sync := services.NewSyncService(repo, source)
	sync.SetBatchSize(cfg.SyncBatchSize)
	ledger := services.NewLedgerService(repo)

	res, err := sync.Sync(ctx, user.ID, *cardID)
	if err != nil {
		logger.Error("Sync failed", "error", err)
		os.Exit(1)
	}

	summary, err := ledger.AggregateBalance(ctx, user.ID)
	if err != nil {
		logger.Error("Failed to compute balance", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Synced %d new transactions from %d messages (%d already known)\n",
		res.TransactionsCommitted, res.MessagesSeen, res.Duplicates)
	fmt.Printf("Income Tk %s | Expense Tk %s | Balance Tk %s\n",
		summary.TotalIncome, summary.TotalExpense, summary.Balance)
}
