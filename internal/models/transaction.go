package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a ledger transaction.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "DEPOSIT"
	KindWithdrawal TransactionKind = "WITHDRAWAL"
	KindLoan       TransactionKind = "LOAN"
	KindLoanPaid   TransactionKind = "LOAN_PAID"
)

// Transaction is a single posted entry in an account's ledger.
//
// BalanceAfter is stamped exactly once, when the entry is committed, and is
// never recomputed: it is the historical account balance immediately after
// this transaction was applied. Kind may transition LOAN -> LOAN_PAID on
// payoff; no other kind transition is legal. LoanApproved is meaningful only
// while Kind is LOAN and flips false -> true at most once.
type Transaction struct {
	ID           string          `json:"id" db:"id"`
	AccountID    string          `json:"account_id" db:"account_id"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	Kind         TransactionKind `json:"kind" db:"kind"`
	Timestamp    time.Time       `json:"timestamp" db:"timestamp"`
	BalanceAfter decimal.Decimal `json:"balance_after" db:"balance_after"`
	LoanApproved bool            `json:"loan_approved" db:"loan_approved"`
}
