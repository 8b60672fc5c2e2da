package storage

import "time"

// User is an account row. The password is stored only as a bcrypt hash.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsVerified   bool
	CreatedAt    time.Time
}

// Card is a sub-balance within a user's ledger. Its balance column is a
// display cache refreshed after each accepted insert; the authoritative
// balance is always the sum over transaction rows.
type Card struct {
	ID         int64
	UserID     int64
	CardType   string
	CardName   string
	CardNumber string
	Balance    int64 // cents
	CreatedAt  time.Time
}
