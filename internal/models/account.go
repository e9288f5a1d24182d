package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the current balance for a single bank account.
// The account owner lives in the identity system; the ledger only
// keeps what it needs to post transactions.
type Account struct {
	ID        string          `json:"id" db:"id"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	Version   int             `json:"version" db:"version"` // for optimistic locking
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
