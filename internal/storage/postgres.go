// Package storage implements the ledger's durable record store on Postgres.
//
// Every mutating method runs as a single SQL transaction that locks the
// account row first (SELECT ... FOR UPDATE), so balance mutations against
// the same account serialize and readers never observe a balance without
// its matching transaction row.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/corebank/ledger/internal/ledger"
	"github.com/corebank/ledger/internal/models"
	"github.com/shopspring/decimal"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Make sure we conform to the interface.
var _ ledger.Store = (*PostgresStore)(nil)

func (s *PostgresStore) Account(ctx context.Context, accountID string) (*models.Account, error) {
	var acct models.Account
	err := s.db.QueryRowContext(ctx, `
		SELECT id, balance, version, created_at, updated_at
		FROM accounts
		WHERE id = $1`, accountID).
		Scan(&acct.ID, &acct.Balance, &acct.Version, &acct.CreatedAt, &acct.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &acct, nil
}

func (s *PostgresStore) CreateAccount(ctx context.Context, acct *models.Account) error {
	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now
	acct.Version = 1

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		acct.ID, acct.Balance, acct.Version, acct.CreatedAt, acct.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *PostgresStore) Transaction(ctx context.Context, txnID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, amount, kind, timestamp, balance_after, loan_approved
		FROM transactions
		WHERE id = $1`, txnID).
		Scan(&txn.ID, &txn.AccountID, &txn.Amount, &txn.Kind, &txn.Timestamp, &txn.BalanceAfter, &txn.LoanApproved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	return &txn, nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, accountID string, rng *ledger.DateRange) ([]models.Transaction, error) {
	query := `
		SELECT id, account_id, amount, kind, timestamp, balance_after, loan_approved
		FROM transactions
		WHERE account_id = $1`
	args := []any{accountID}

	if rng != nil {
		query += ` AND timestamp >= $2 AND timestamp < $3`
		args = append(args, rng.Start, endExclusive(rng.End))
	}
	query += ` ORDER BY timestamp`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (s *PostgresStore) ListLoans(ctx context.Context, accountID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, amount, kind, timestamp, balance_after, loan_approved
		FROM transactions
		WHERE account_id = $1 AND kind = $2
		ORDER BY timestamp DESC`, accountID, models.KindLoan)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// SumAmounts totals amounts over every transaction in the range, across all
// accounts. The account-agnostic scope is intentional; see ledger.TransactionReader.
func (s *PostgresStore) SumAmounts(ctx context.Context, rng ledger.DateRange) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE timestamp >= $1 AND timestamp < $2`,
		rng.Start, endExclusive(rng.End)).
		Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum amounts: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) CountApprovedLoans(ctx context.Context, accountID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM transactions
		WHERE account_id = $1 AND kind = $2 AND loan_approved = TRUE`,
		accountID, models.KindLoan).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count approved loans: %w", err)
	}
	return count, nil
}

// CommitTransaction applies the balance delta and inserts the transaction
// row in one SQL transaction, with the account row locked throughout.
func (s *PostgresStore) CommitTransaction(ctx context.Context, accountID string, txn *models.Transaction, delta decimal.Decimal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	acct, err := s.lockAccount(ctx, tx, accountID)
	if err != nil {
		return err
	}

	newBalance := acct.Balance.Add(delta)
	if newBalance.IsNegative() {
		return &ledger.ValidationError{
			Code:   ledger.CodeInsufficientFunds,
			Amount: delta.Abs(),
			Msg:    fmt.Sprintf("balance %s cannot cover %s", acct.Balance, delta.Abs()),
		}
	}

	txn.BalanceAfter = newBalance
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, account_id, amount, kind, timestamp, balance_after, loan_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		txn.ID, txn.AccountID, txn.Amount, txn.Kind, txn.Timestamp, txn.BalanceAfter, txn.LoanApproved); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	if err := s.updateBalance(ctx, tx, acct, newBalance); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) ApproveLoan(ctx context.Context, loanID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET loan_approved = TRUE
		WHERE id = $1 AND kind = $2 AND loan_approved = FALSE`,
		loanID, models.KindLoan)
	if err != nil {
		return fmt.Errorf("failed to approve loan: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to approve loan: %w", err)
	}
	if affected == 0 {
		return ledger.ErrLoanNotFound
	}
	return nil
}

// SettleLoan re-checks the payoff preconditions under the row locks so a
// concurrent withdrawal cannot sneak the balance out from under the payoff.
func (s *PostgresStore) SettleLoan(ctx context.Context, loanID string) (*models.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var loan models.Transaction
	err = tx.QueryRowContext(ctx, `
		SELECT id, account_id, amount, kind, timestamp, balance_after, loan_approved
		FROM transactions
		WHERE id = $1
		FOR UPDATE`, loanID).
		Scan(&loan.ID, &loan.AccountID, &loan.Amount, &loan.Kind, &loan.Timestamp, &loan.BalanceAfter, &loan.LoanApproved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrLoanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock loan: %w", err)
	}

	if loan.Kind != models.KindLoan {
		return nil, ledger.ErrLoanNotFound
	}
	if !loan.LoanApproved {
		return nil, ledger.ErrLoanNotApproved
	}

	acct, err := s.lockAccount(ctx, tx, loan.AccountID)
	if err != nil {
		return nil, err
	}

	// Strict less-than: a loan amount equal to the balance does not settle.
	if !loan.Amount.LessThan(acct.Balance) {
		return nil, &ledger.ValidationError{
			Code:   ledger.CodeInsufficientFunds,
			Amount: loan.Amount,
			Msg:    fmt.Sprintf("loan amount %s is not below balance %s", loan.Amount, acct.Balance),
		}
	}

	newBalance := acct.Balance.Sub(loan.Amount)
	if _, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET kind = $1, balance_after = $2
		WHERE id = $3`,
		models.KindLoanPaid, newBalance, loan.ID); err != nil {
		return nil, fmt.Errorf("failed to settle loan: %w", err)
	}

	if err := s.updateBalance(ctx, tx, acct, newBalance); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	loan.Kind = models.KindLoanPaid
	loan.BalanceAfter = newBalance
	return &loan, nil
}

func (s *PostgresStore) lockAccount(ctx context.Context, tx *sql.Tx, accountID string) (*models.Account, error) {
	var acct models.Account
	err := tx.QueryRowContext(ctx, `
		SELECT id, balance, version, created_at, updated_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE`, accountID).
		Scan(&acct.ID, &acct.Balance, &acct.Version, &acct.CreatedAt, &acct.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return &acct, nil
}

func (s *PostgresStore) updateBalance(ctx context.Context, tx *sql.Tx, acct *models.Account, newBalance decimal.Decimal) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`,
		newBalance, time.Now().UTC(), acct.ID, acct.Version)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("account %s version changed under lock", acct.ID)
	}
	return nil
}

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	var txns []models.Transaction
	for rows.Next() {
		var txn models.Transaction
		if err := rows.Scan(&txn.ID, &txn.AccountID, &txn.Amount, &txn.Kind, &txn.Timestamp, &txn.BalanceAfter, &txn.LoanApproved); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return txns, nil
}

// endExclusive converts an inclusive end date to the exclusive upper bound
// used in SQL comparisons.
func endExclusive(end time.Time) time.Time {
	return end.AddDate(0, 0, 1)
}
