package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Direction = "income"
	Expense Direction = "expense"
)

// DefaultStatus is recorded on every transaction the engine commits; the
// provider SMS only ever reports settled movements.
const DefaultStatus = "Completed"

type (
	// Direction tells whether a transaction adds to or subtracts from the
	// owner's balance.
	Direction string

	Money struct {
		Cents int64
	}

	// Draft is a transaction extracted from a single SMS body, before it is
	// stamped with an owner, a card and the message timestamp. Drafts are
	// consumed immediately by the sync pipeline and never persisted.
	Draft struct {
		Direction     Direction
		Amount        Money
		Description   string
		ProviderTrxID string
		Provider      string
		Method        string
		Category      string
		Counterparty  string
		AccountSuffix string
		StatedBalance Money // balance the provider claims after the movement
		Fee           Money
		SMSBody       string
	}

	// Transaction is a committed ledger row.
	Transaction struct {
		ID            int64
		UserID        int64
		CardID        int64 // 0 when not tied to a card
		Direction     Direction
		Amount        Money
		Description   string
		OccurredAt    time.Time
		Category      string
		Provider      string
		Method        string
		ProviderTrxID string
		Fee           Money
		Counterparty  string
		AccountSuffix string
		StatedBalance Money // display only, never used for aggregates
		Status        string
		SMSBody       string
		CreatedAt     time.Time
	}

	// BalanceSummary is computed from stored rows at query time.
	BalanceSummary struct {
		TotalIncome  Money
		TotalExpense Money
		Balance      Money
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyProviderTrx = errors.New("empty provider transaction id")
	ErrZeroOccurredAt   = errors.New("occurred at cannot be zero")
)

func (d Direction) Validate() error {
	switch d {
	case Income, Expense:
		return nil
	}
	return ErrInvalidDirection
}

func (t Transaction) Validate() error {
	if err := t.Direction.Validate(); err != nil {
		return err
	}
	if t.Amount.Cents < 0 || t.Fee.Cents < 0 {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(t.ProviderTrxID) == "" {
		return ErrEmptyProviderTrx
	}
	if t.OccurredAt.IsZero() {
		return ErrZeroOccurredAt
	}
	return nil
}
