// Package ledger implements the transaction engine for a single bank
// account: per-kind validation rules, atomic balance commits, the loan
// lifecycle and the transaction report.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/corebank/ledger/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Engine applies validated transactions to accounts through a Store.
type Engine struct {
	store Store
	log   zerolog.Logger
}

// NewEngine creates an Engine on top of a durable store.
func NewEngine(store Store, log zerolog.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// Commit validates and posts a transaction of the given kind.
//
// On success the returned transaction carries its stamped post-commit
// balance. A validation failure is terminal for the call and leaves all
// state untouched; the caller may resubmit with a corrected amount.
func (e *Engine) Commit(ctx context.Context, accountID string, kind models.TransactionKind, amount decimal.Decimal) (*models.Transaction, error) {
	rule, ok := ruleFor(kind)
	if !ok {
		return nil, fmt.Errorf("transaction kind %q cannot be committed directly", kind)
	}

	acct, err := e.store.Account(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := rule(amount, acct); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Amount:    amount,
		Kind:      kind,
		Timestamp: time.Now().UTC(),
	}

	if err := e.store.CommitTransaction(ctx, accountID, txn, deltaFor(kind, amount)); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("account_id", accountID).
		Str("transaction_id", txn.ID).
		Str("kind", string(kind)).
		Str("amount", amount.String()).
		Str("balance_after", txn.BalanceAfter.String()).
		Msg("transaction committed")

	return txn, nil
}

// deltaFor is the signed effect a transaction kind has on the balance.
// A loan request leaves the balance untouched until payoff.
func deltaFor(kind models.TransactionKind, amount decimal.Decimal) decimal.Decimal {
	switch kind {
	case models.KindDeposit:
		return amount
	case models.KindWithdrawal, models.KindLoanPaid:
		return amount.Neg()
	default:
		return decimal.Zero
	}
}
