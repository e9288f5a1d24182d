package ledger

import (
	"context"

	"github.com/corebank/ledger/internal/models"
	"github.com/shopspring/decimal"
)

// Report is the result of a transaction report query.
type Report struct {
	Transactions []models.Transaction `json:"transactions"`
	Total        decimal.Decimal      `json:"total"`
}

// Report returns the account's transaction history and a total.
//
// Without a range the total is the account's current balance. With a range
// the listing is restricted to the account's transactions inside it, while
// the total sums amounts over every transaction in the range ledger-wide
// (see TransactionReader.SumAmounts).
func (e *Engine) Report(ctx context.Context, accountID string, rng *DateRange) (*Report, error) {
	acct, err := e.store.Account(ctx, accountID)
	if err != nil {
		return nil, err
	}

	txns, err := e.store.ListTransactions(ctx, accountID, rng)
	if err != nil {
		return nil, err
	}

	total := acct.Balance
	if rng != nil {
		total, err = e.store.SumAmounts(ctx, *rng)
		if err != nil {
			return nil, err
		}
	}

	return &Report{Transactions: txns, Total: total}, nil
}
