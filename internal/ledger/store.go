package ledger

import (
	"context"
	"time"

	"github.com/corebank/ledger/internal/models"
	"github.com/shopspring/decimal"
)

// DateRange filters transactions by posting date, inclusive on both ends.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// AccountStore reads and creates accounts.
type AccountStore interface {
	// Account retrieves an account by ID, or ErrAccountNotFound.
	Account(ctx context.Context, accountID string) (*models.Account, error)

	// CreateAccount persists a new account with its opening balance.
	CreateAccount(ctx context.Context, acct *models.Account) error
}

// TransactionReader reads posted transactions.
type TransactionReader interface {
	// Transaction retrieves a transaction by ID, or ErrTransactionNotFound.
	Transaction(ctx context.Context, txnID string) (*models.Transaction, error)

	// ListTransactions returns the account's transactions in timestamp order,
	// restricted to rng when it is non-nil.
	ListTransactions(ctx context.Context, accountID string, rng *DateRange) ([]models.Transaction, error)

	// ListLoans returns the account's outstanding LOAN transactions, newest first.
	ListLoans(ctx context.Context, accountID string) ([]models.Transaction, error)

	// SumAmounts totals the amount of every transaction posted in the range,
	// across the whole ledger. It is deliberately not scoped to one account;
	// the ranged report total has always been ledger-wide.
	SumAmounts(ctx context.Context, rng DateRange) (decimal.Decimal, error)

	// CountApprovedLoans counts the account's LOAN transactions with
	// loan_approved set. Paid loans no longer carry the LOAN kind and so
	// fall out of the count.
	CountApprovedLoans(ctx context.Context, accountID string) (int, error)
}

// TransactionWriter performs the mutations. Every method is a single atomic
// unit: either all of its writes land or none do, and concurrent writers
// against the same account observe a serializable order.
type TransactionWriter interface {
	// CommitTransaction applies delta to the account balance, stamps
	// txn.BalanceAfter with the resulting balance and inserts txn, all under
	// the account's write lock. A delta that would drive the balance negative
	// fails with a CodeInsufficientFunds validation error and writes nothing.
	CommitTransaction(ctx context.Context, accountID string, txn *models.Transaction, delta decimal.Decimal) error

	// ApproveLoan marks an outstanding LOAN transaction approved.
	// Returns ErrLoanNotFound if no unapproved LOAN row matches.
	ApproveLoan(ctx context.Context, loanID string) error

	// SettleLoan pays off an approved loan: under the account's write lock it
	// re-checks that the loan is still an approved LOAN and that its amount is
	// strictly below the balance, deducts the amount, restamps BalanceAfter
	// and flips the kind to LOAN_PAID. Returns the settled transaction.
	SettleLoan(ctx context.Context, loanID string) (*models.Transaction, error)
}

// Store is the durable record store backing the engine.
type Store interface {
	AccountStore
	TransactionReader
	TransactionWriter
}
