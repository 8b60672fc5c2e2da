// Package storage owns the SQLite ledger: users, cards and the deduplicated
// transaction table.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/masudbs-23/hisab-app/internal/core"

	_ "modernc.org/sqlite"
)

// InsertOutcome reports what InsertTransaction did. A duplicate is a normal
// steady-state result of re-syncing an unchanged inbox, not an error.
type InsertOutcome int

const (
	Inserted InsertOutcome = iota + 1
	SkippedDuplicate
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrCardNotFound = errors.New("card not found")
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertTransaction persists a transaction with at-most-once semantics per
// (user, provider trx id). The uniqueness check is the table's own constraint,
// so two racing inserts of the same id still produce exactly one row.
func (r *Repository) InsertTransaction(ctx context.Context, tx core.Transaction) (InsertOutcome, error) {
	if err := tx.Validate(); err != nil {
		return 0, fmt.Errorf("validate transaction: %w", err)
	}

	var cardID any
	if tx.CardID != 0 {
		cardID = tx.CardID
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (
			user_id, card_id, direction, amount_cents, description, occurred_at,
			category, provider, method, provider_trx_id, fee_cents,
			counterparty, account_suffix, running_balance_cents, status, sms_body
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, provider_trx_id) DO NOTHING`,
		tx.UserID, cardID, string(tx.Direction), tx.Amount.Cents, tx.Description,
		tx.OccurredAt.UTC().Format(time.RFC3339), tx.Category, tx.Provider,
		tx.Method, tx.ProviderTrxID, tx.Fee.Cents, tx.Counterparty,
		tx.AccountSuffix, tx.StatedBalance.Cents, tx.Status, tx.SMSBody)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		slog.DebugContext(ctx, "transaction already in ledger",
			"user_id", tx.UserID, "provider_trx_id", tx.ProviderTrxID)
		return SkippedDuplicate, nil
	}

	slog.InfoContext(ctx, "transaction committed",
		"user_id", tx.UserID,
		"provider_trx_id", tx.ProviderTrxID,
		"direction", tx.Direction,
		"amount_cents", tx.Amount.Cents,
		"provider", tx.Provider)
	return Inserted, nil
}

// ListTransactions returns the user's ledger ordered by occurrence time,
// newest first.
func (r *Repository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, card_id, direction, amount_cents, description,
		       occurred_at, category, provider, method, provider_trx_id,
		       fee_cents, counterparty, account_suffix, running_balance_cents,
		       status, sms_body, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY occurred_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		tx         core.Transaction
		cardID     sql.NullInt64
		occurredAt string
		createdAt  time.Time
		direction  string
	)
	err := rows.Scan(&tx.ID, &tx.UserID, &cardID, &direction, &tx.Amount.Cents,
		&tx.Description, &occurredAt, &tx.Category, &tx.Provider, &tx.Method,
		&tx.ProviderTrxID, &tx.Fee.Cents, &tx.Counterparty, &tx.AccountSuffix,
		&tx.StatedBalance.Cents, &tx.Status, &tx.SMSBody, &createdAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	tx.Direction = core.Direction(direction)
	tx.CardID = cardID.Int64
	tx.CreatedAt = createdAt
	tx.OccurredAt, err = time.Parse(time.RFC3339, occurredAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse occurred_at %q: %w", occurredAt, err)
	}
	return tx, nil
}

// AggregateBalance sums the stored rows at query time. No cached counter is
// consulted; the rows are the source of truth.
func (r *Repository) AggregateBalance(ctx context.Context, userID int64) (core.BalanceSummary, error) {
	return r.aggregate(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN direction = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN direction = 'expense' THEN amount_cents ELSE 0 END), 0)
		FROM transactions WHERE user_id = ?`, userID)
}

// AggregateCardBalance is AggregateBalance scoped to one card.
func (r *Repository) AggregateCardBalance(ctx context.Context, userID, cardID int64) (core.BalanceSummary, error) {
	return r.aggregate(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN direction = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN direction = 'expense' THEN amount_cents ELSE 0 END), 0)
		FROM transactions WHERE user_id = ? AND card_id = ?`, userID, cardID)
}

func (r *Repository) aggregate(ctx context.Context, query string, args ...any) (core.BalanceSummary, error) {
	var income, expense int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&income, &expense); err != nil {
		return core.BalanceSummary{}, fmt.Errorf("aggregate balance: %w", err)
	}
	return core.BalanceSummary{
		TotalIncome:  core.Money{Cents: income},
		TotalExpense: core.Money{Cents: expense},
		Balance:      core.Money{Cents: income - expense},
	}, nil
}

// UpdateCardBalance refreshes a card's display cache. Callers treat failures
// here as non-fatal; the cache never participates in aggregate queries.
func (r *Repository) UpdateCardBalance(ctx context.Context, cardID int64, balance core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cards SET balance_cents = ? WHERE id = ?`, balance.Cents, cardID)
	if err != nil {
		return fmt.Errorf("update card balance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCardNotFound
	}
	return nil
}

func (r *Repository) CreateUser(ctx context.Context, email, passwordHash string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, is_verified) VALUES (?, ?, 0)
		ON CONFLICT (email) DO NOTHING`, email, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return 0, ErrUserExists
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	var verified int64
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, is_verified, created_at
		FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &verified, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("query user: %w", err)
	}
	u.IsVerified = verified != 0
	return u, nil
}

func (r *Repository) MarkUserVerified(ctx context.Context, email string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_verified = 1 WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("mark user verified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *Repository) CreateCard(ctx context.Context, c Card) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO cards (user_id, card_type, card_name, card_number, balance_cents)
		VALUES (?, ?, ?, ?, ?)`,
		c.UserID, c.CardType, c.CardName, c.CardNumber, c.Balance)
	if err != nil {
		return 0, fmt.Errorf("insert card: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (r *Repository) ListCards(ctx context.Context, userID int64) ([]Card, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, card_type, card_name, card_number, balance_cents, created_at
		FROM cards WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var out []Card
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.ID, &c.UserID, &c.CardType, &c.CardName,
			&c.CardNumber, &c.Balance, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return out, nil
}

func (r *Repository) DeleteCard(ctx context.Context, cardID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, cardID)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCardNotFound
	}
	return nil
}
