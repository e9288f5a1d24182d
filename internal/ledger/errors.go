package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationCode identifies which rule a rejected amount violated.
type ValidationCode string

const (
	CodeBelowMinimum      ValidationCode = "BELOW_MINIMUM"
	CodeAboveMaximum      ValidationCode = "ABOVE_MAXIMUM"
	CodeInsufficientFunds ValidationCode = "INSUFFICIENT_FUNDS"
)

// ValidationError is returned when a proposed amount is illegal for its
// transaction kind. Rules run in a fixed order and the first violation wins,
// so a ValidationError always carries exactly one code.
type ValidationError struct {
	Code   ValidationCode
	Amount decimal.Decimal
	Msg    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Is lets errors.Is match two validation errors by code.
func (e *ValidationError) Is(target error) bool {
	var other *ValidationError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

var (
	// ErrAccountNotFound is returned when the referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound is returned when the referenced transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrLoanLimitExceeded is returned when an account already has the maximum
	// number of approved loans and requests another.
	ErrLoanLimitExceeded = errors.New("loan limit exceeded")

	// ErrLoanNotFound is returned when a loan operation references a
	// transaction that does not exist or is not an outstanding loan.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrLoanNotApproved is returned when paying off a loan that was never approved.
	ErrLoanNotApproved = errors.New("loan not approved")
)
