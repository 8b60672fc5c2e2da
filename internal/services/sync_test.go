package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/masudbs-23/hisab-app/internal/core"
	"github.com/masudbs-23/hisab-app/internal/inbox"
	"github.com/masudbs-23/hisab-app/internal/sms"
	"github.com/masudbs-23/hisab-app/internal/storage"
)

type staticSource struct {
	msgs []sms.RawMessage
	err  error
}

func (s *staticSource) Messages(_ context.Context, maxCount int) ([]sms.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	if maxCount > 0 && len(s.msgs) > maxCount {
		return s.msgs[:maxCount], nil
	}
	return s.msgs, nil
}

// failingStore errors on one provider trx id and delegates everything else.
type failingStore struct {
	LedgerStore
	failTrxID string
}

func (f *failingStore) InsertTransaction(ctx context.Context, tx core.Transaction) (storage.InsertOutcome, error) {
	if tx.ProviderTrxID == f.failTrxID {
		return 0, errors.New("disk full")
	}
	return f.LedgerStore.InsertTransaction(ctx, tx)
}

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "hisab.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *storage.Repository) int64 {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), "sync@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

var inboxFixture = []sms.RawMessage{
	{
		Sender: "bKash",
		Body:   "Cash In Tk 3,045.00 from 01851528913 successful. Fee Tk 0.00. Balance Tk 10,601.71. TrxID CIP6OK01LU at 25/09/2025 12:09.",
		Date:   time.Date(2025, 9, 25, 12, 9, 0, 0, time.UTC),
	},
	{
		Sender: "bKash",
		Body:   "Send Money Tk 250.00 to 01621161449 successful. Ref 1. Fee Tk 0.00. Balance Tk 44.97. TrxID CJF8BLXLD4 at 15/10/2025 23:42",
		Date:   time.Date(2025, 10, 15, 23, 42, 0, 0, time.UTC),
	},
	{
		Sender: "RandomShop",
		Body:   "Your parcel is ready for pickup",
		Date:   time.Date(2025, 10, 16, 9, 0, 0, 0, time.UTC),
	},
	{
		Sender: "bKash",
		Body:   "Your bKash PIN was changed",
		Date:   time.Date(2025, 10, 16, 10, 0, 0, 0, time.UTC),
	},
}

func TestSyncCommitsParsedTransactions(t *testing.T) {
	repo := newTestRepo(t)
	userID := newTestUser(t, repo)
	svc := NewSyncService(repo, &staticSource{msgs: inboxFixture})

	res, err := svc.Sync(context.Background(), userID, 0)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res.MessagesSeen != 4 {
		t.Errorf("messages seen = %d, want 4", res.MessagesSeen)
	}
	if res.TransactionsCommitted != 2 {
		t.Errorf("committed = %d, want 2", res.TransactionsCommitted)
	}
	if res.Failures != 0 || res.Duplicates != 0 {
		t.Errorf("failures = %d, duplicates = %d, want 0/0", res.Failures, res.Duplicates)
	}

	list, err := repo.ListTransactions(context.Background(), userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ledger has %d rows, want 2", len(list))
	}
	// Newest occurrence first.
	if list[0].ProviderTrxID != "CJF8BLXLD4" || list[1].ProviderTrxID != "CIP6OK01LU" {
		t.Errorf("unexpected order: %s, %s", list[0].ProviderTrxID, list[1].ProviderTrxID)
	}
	if list[0].Counterparty != "01621161449" {
		t.Errorf("counterparty = %q, want 01621161449", list[0].Counterparty)
	}
	if !list[1].OccurredAt.Equal(inboxFixture[0].Date) {
		t.Errorf("occurred at = %v, want message date %v", list[1].OccurredAt, inboxFixture[0].Date)
	}

	summary, err := repo.AggregateBalance(context.Background(), userID)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if summary.Balance.Cents != 304500-25000 {
		t.Errorf("balance = %d cents, want %d", summary.Balance.Cents, 304500-25000)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	userID := newTestUser(t, repo)
	svc := NewSyncService(repo, &staticSource{msgs: inboxFixture})
	ctx := context.Background()

	first, err := svc.Sync(ctx, userID, 0)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if first.TransactionsCommitted != 2 {
		t.Fatalf("first run committed %d, want 2", first.TransactionsCommitted)
	}

	before, err := repo.ListTransactions(ctx, userID)
	if err != nil {
		t.Fatalf("list before: %v", err)
	}
	balanceBefore, err := repo.AggregateBalance(ctx, userID)
	if err != nil {
		t.Fatalf("aggregate before: %v", err)
	}

	second, err := svc.Sync(ctx, userID, 0)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if second.TransactionsCommitted != 0 {
		t.Errorf("second run committed %d, want 0", second.TransactionsCommitted)
	}
	if second.Duplicates != 2 {
		t.Errorf("second run duplicates = %d, want 2", second.Duplicates)
	}

	after, err := repo.ListTransactions(ctx, userID)
	if err != nil {
		t.Fatalf("list after: %v", err)
	}
	if len(after) != len(before) {
		t.Errorf("ledger grew from %d to %d rows", len(before), len(after))
	}
	balanceAfter, err := repo.AggregateBalance(ctx, userID)
	if err != nil {
		t.Fatalf("aggregate after: %v", err)
	}
	if balanceAfter != balanceBefore {
		t.Errorf("balance changed from %+v to %+v", balanceBefore, balanceAfter)
	}
}

func TestSyncNoConsentIsSoft(t *testing.T) {
	repo := newTestRepo(t)
	userID := newTestUser(t, repo)
	svc := NewSyncService(repo, &staticSource{err: inbox.ErrNoConsent})

	res, err := svc.Sync(context.Background(), userID, 0)
	if err != nil {
		t.Fatalf("consent refusal must not be an error, got %v", err)
	}
	if res != (SyncResult{}) {
		t.Errorf("result = %+v, want zero", res)
	}
}

func TestSyncFetchFailurePropagates(t *testing.T) {
	repo := newTestRepo(t)
	userID := newTestUser(t, repo)
	svc := NewSyncService(repo, &staticSource{err: errors.New("radio off")})

	if _, err := svc.Sync(context.Background(), userID, 0); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
}

func TestSyncContinuesPastStorageFailure(t *testing.T) {
	repo := newTestRepo(t)
	userID := newTestUser(t, repo)
	store := &failingStore{LedgerStore: repo, failTrxID: "CIP6OK01LU"}
	svc := NewSyncService(store, &staticSource{msgs: inboxFixture})

	res, err := svc.Sync(context.Background(), userID, 0)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res.Failures != 1 {
		t.Errorf("failures = %d, want 1", res.Failures)
	}
	if res.TransactionsCommitted != 1 {
		t.Errorf("committed = %d, want 1", res.TransactionsCommitted)
	}
}

func TestSyncRefreshesCardBalanceCache(t *testing.T) {
	repo := newTestRepo(t)
	userID := newTestUser(t, repo)
	ctx := context.Background()

	cardID, err := repo.CreateCard(ctx, storage.Card{UserID: userID, CardName: "Main", CardType: "Visa"})
	if err != nil {
		t.Fatalf("create card: %v", err)
	}

	svc := NewSyncService(repo, &staticSource{msgs: inboxFixture})
	if _, err := svc.Sync(ctx, userID, cardID); err != nil {
		t.Fatalf("sync: %v", err)
	}

	cards, err := repo.ListCards(ctx, userID)
	if err != nil {
		t.Fatalf("list cards: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(cards))
	}
	if cards[0].Balance != 304500-25000 {
		t.Errorf("cached balance = %d, want %d", cards[0].Balance, 304500-25000)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	when := time.Date(2025, 9, 25, 12, 9, 0, 0, time.UTC)
	draft := core.Draft{
		Direction:     core.Income,
		Amount:        core.Money{Cents: 100},
		Description:   "test",
		ProviderTrxID: "X1",
		Provider:      "bKash",
	}

	tx := Normalize(draft, when, 7, 3)
	if tx.UserID != 7 || tx.CardID != 3 {
		t.Errorf("owner/card = %d/%d, want 7/3", tx.UserID, tx.CardID)
	}
	if !tx.OccurredAt.Equal(when) {
		t.Errorf("occurred at = %v, want message date %v", tx.OccurredAt, when)
	}
	if tx.Status != core.DefaultStatus {
		t.Errorf("status = %q, want %q", tx.Status, core.DefaultStatus)
	}
	if tx.ProviderTrxID != "X1" {
		t.Errorf("trx id = %q, must pass through unchanged", tx.ProviderTrxID)
	}
	if tx.Fee.Cents != 0 {
		t.Errorf("fee = %d, want default 0", tx.Fee.Cents)
	}
}
