package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/masudbs-23/hisab-app/internal/core"
	"github.com/masudbs-23/hisab-app/internal/storage"
)

// LedgerService exposes the read side of the ledger plus manual entry for
// transactions the user types in by hand.
type LedgerService struct {
	repo *storage.Repository
	now  func() time.Time
}

func NewLedgerService(repo *storage.Repository) *LedgerService {
	return &LedgerService{repo: repo, now: time.Now}
}

func (s *LedgerService) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.repo.ListTransactions(ctx, userID)
}

func (s *LedgerService) AggregateBalance(ctx context.Context, userID int64) (core.BalanceSummary, error) {
	return s.repo.AggregateBalance(ctx, userID)
}

// AddManual records a hand-entered transaction through the same dedup path as
// SMS ingestion. It mints a MAN-prefixed id so a manual entry can never shadow
// a provider-reported one.
func (s *LedgerService) AddManual(ctx context.Context, userID, cardID int64, direction core.Direction, amount core.Money, description, category, method string) (core.Transaction, error) {
	now := s.now().UTC()
	tx := core.Transaction{
		UserID:        userID,
		CardID:        cardID,
		Direction:     direction,
		Amount:        amount,
		Description:   description,
		OccurredAt:    now,
		Category:      category,
		Method:        method,
		Provider:      "Manual",
		ProviderTrxID: "MAN" + strconv.FormatInt(now.UnixMilli(), 10),
		Status:        core.DefaultStatus,
	}

	outcome, err := s.repo.InsertTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add manual transaction: %w", err)
	}
	if outcome == storage.SkippedDuplicate {
		return core.Transaction{}, fmt.Errorf("add manual transaction: id %s already used", tx.ProviderTrxID)
	}
	return tx, nil
}
