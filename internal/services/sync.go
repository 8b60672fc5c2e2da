// Package services wires the SMS parser and the ledger store into the
// operations the host application calls.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/masudbs-23/hisab-app/internal/core"
	"github.com/masudbs-23/hisab-app/internal/inbox"
	"github.com/masudbs-23/hisab-app/internal/sms"
	"github.com/masudbs-23/hisab-app/internal/storage"
)

// MessageSource yields a bounded batch of raw inbox messages. Implementations
// return inbox.ErrNoConsent when SMS access was refused.
type MessageSource interface {
	Messages(ctx context.Context, maxCount int) ([]sms.RawMessage, error)
}

// LedgerStore is the slice of the repository the orchestrator needs.
type LedgerStore interface {
	InsertTransaction(ctx context.Context, tx core.Transaction) (storage.InsertOutcome, error)
	AggregateCardBalance(ctx context.Context, userID, cardID int64) (core.BalanceSummary, error)
	UpdateCardBalance(ctx context.Context, cardID int64, balance core.Money) error
}

// SyncResult is what the host presents after a sync run.
type SyncResult struct {
	MessagesSeen          int
	TransactionsCommitted int
	Duplicates            int
	Failures              int
}

// SyncService pulls a batch of messages and runs each one through
// classify, parse, normalize and insert, strictly in source order.
type SyncService struct {
	repo      LedgerStore
	source    MessageSource
	batchSize int
	now       func() time.Time
}

func NewSyncService(repo LedgerStore, source MessageSource) *SyncService {
	return &SyncService{
		repo:      repo,
		source:    source,
		batchSize: inbox.DefaultMaxCount,
		now:       time.Now,
	}
}

// SetBatchSize overrides the per-run message cap. Values below one are ignored.
func (s *SyncService) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// Sync ingests up to one batch of messages into the user's ledger. Re-running
// against an unchanged inbox commits nothing new. A message that fails to
// store is logged and skipped; the rest of the batch still runs.
func (s *SyncService) Sync(ctx context.Context, userID, cardID int64) (SyncResult, error) {
	runID := uuid.NewString()

	msgs, err := s.source.Messages(ctx, s.batchSize)
	if errors.Is(err, inbox.ErrNoConsent) {
		slog.InfoContext(ctx, "sms access not granted, nothing to sync",
			"run_id", runID, "user_id", userID)
		return SyncResult{}, nil
	}
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch messages: %w", err)
	}

	res := SyncResult{MessagesSeen: len(msgs)}
	for _, msg := range msgs {
		provider, ok := sms.Classify(msg.Sender)
		if !ok {
			continue
		}

		draft, ok := provider.Parse(msg.Body, s.now())
		if !ok {
			slog.DebugContext(ctx, "no rule matched",
				"run_id", runID, "provider", provider.Name)
			continue
		}

		tx := Normalize(draft, msg.Date, userID, cardID)
		outcome, err := s.repo.InsertTransaction(ctx, tx)
		if err != nil {
			slog.ErrorContext(ctx, "failed to store transaction",
				"run_id", runID,
				"provider_trx_id", tx.ProviderTrxID,
				"error", err)
			res.Failures++
			continue
		}

		switch outcome {
		case storage.Inserted:
			res.TransactionsCommitted++
			s.refreshCardBalance(ctx, userID, cardID)
		case storage.SkippedDuplicate:
			res.Duplicates++
		}
	}

	slog.InfoContext(ctx, "sms sync finished",
		"run_id", runID,
		"user_id", userID,
		"messages_seen", res.MessagesSeen,
		"committed", res.TransactionsCommitted,
		"duplicates", res.Duplicates,
		"failures", res.Failures)
	return res, nil
}

// refreshCardBalance rewrites the card's cached balance from the stored rows.
// The cache is display-only, so a failure here never unwinds an insert.
func (s *SyncService) refreshCardBalance(ctx context.Context, userID, cardID int64) {
	if cardID == 0 {
		return
	}
	summary, err := s.repo.AggregateCardBalance(ctx, userID, cardID)
	if err != nil {
		slog.WarnContext(ctx, "failed to compute card balance",
			"card_id", cardID, "error", err)
		return
	}
	if err := s.repo.UpdateCardBalance(ctx, cardID, summary.Balance); err != nil {
		slog.WarnContext(ctx, "failed to refresh card balance cache",
			"card_id", cardID, "error", err)
	}
}

// Normalize stamps a parsed draft with its owner, target card and the source
// message timestamp. The provider transaction id passes through unchanged,
// synthesized or not; deduplication belongs to the store.
func Normalize(draft core.Draft, occurredAt time.Time, userID, cardID int64) core.Transaction {
	return core.Transaction{
		UserID:        userID,
		CardID:        cardID,
		Direction:     draft.Direction,
		Amount:        draft.Amount,
		Description:   draft.Description,
		OccurredAt:    occurredAt.UTC(),
		Category:      draft.Category,
		Provider:      draft.Provider,
		Method:        draft.Method,
		ProviderTrxID: draft.ProviderTrxID,
		Fee:           draft.Fee,
		Counterparty:  draft.Counterparty,
		AccountSuffix: draft.AccountSuffix,
		StatedBalance: draft.StatedBalance,
		Status:        core.DefaultStatus,
		SMSBody:       draft.SMSBody,
	}
}
