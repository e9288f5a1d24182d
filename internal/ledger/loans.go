package ledger

import (
	"context"
	"errors"

	"github.com/corebank/ledger/internal/models"
	"github.com/shopspring/decimal"
)

// maxApprovedLoans is the hard cap on approved loans per account.
const maxApprovedLoans = 3

// RequestLoan posts a LOAN transaction with zero balance effect.
// Accounts already carrying maxApprovedLoans approved loans are rejected
// with ErrLoanLimitExceeded before anything is written. Unapproved prior
// requests do not count against the cap.
func (e *Engine) RequestLoan(ctx context.Context, accountID string, amount decimal.Decimal) (*models.Transaction, error) {
	count, err := e.store.CountApprovedLoans(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if count >= maxApprovedLoans {
		return nil, ErrLoanLimitExceeded
	}
	return e.Commit(ctx, accountID, models.KindLoan, amount)
}

// ApproveLoan flips a loan request's approval flag. Approval is one-way and
// idempotent: approving an already-approved loan is a no-op success.
func (e *Engine) ApproveLoan(ctx context.Context, loanID string) error {
	loan, err := e.store.Transaction(ctx, loanID)
	if errors.Is(err, ErrTransactionNotFound) {
		return ErrLoanNotFound
	}
	if err != nil {
		return err
	}
	if loan.Kind != models.KindLoan {
		return ErrLoanNotFound
	}
	if loan.LoanApproved {
		return nil
	}
	return e.store.ApproveLoan(ctx, loanID)
}

// PayLoan settles an approved loan: deducts its amount from the account
// balance, restamps the loan's BalanceAfter and flips its kind to LOAN_PAID,
// atomically. The funds guard is strict: a loan amount equal to the balance
// is rejected as insufficient.
func (e *Engine) PayLoan(ctx context.Context, loanID string) (*models.Transaction, error) {
	loan, err := e.store.Transaction(ctx, loanID)
	if errors.Is(err, ErrTransactionNotFound) {
		return nil, ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}
	if loan.Kind != models.KindLoan {
		return nil, ErrLoanNotFound
	}
	if !loan.LoanApproved {
		return nil, ErrLoanNotApproved
	}

	settled, err := e.store.SettleLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("account_id", settled.AccountID).
		Str("loan_id", settled.ID).
		Str("amount", settled.Amount.String()).
		Str("balance_after", settled.BalanceAfter.String()).
		Msg("loan settled")

	return settled, nil
}

// Loans lists the account's outstanding loan requests, newest first.
func (e *Engine) Loans(ctx context.Context, accountID string) ([]models.Transaction, error) {
	return e.store.ListLoans(ctx, accountID)
}
