package ledger

import (
	"fmt"

	"github.com/corebank/ledger/internal/models"
	"github.com/shopspring/decimal"
)

var (
	minDepositAmount    = decimal.NewFromInt(100)
	minWithdrawalAmount = decimal.NewFromInt(500)
	maxWithdrawalAmount = decimal.NewFromInt(20000)
)

// Rule decides whether a proposed amount is legal for an account snapshot.
// Rules are pure: they read nothing beyond their arguments and mutate nothing.
type Rule func(amount decimal.Decimal, acct *models.Account) error

// ValidateDeposit enforces the deposit floor.
func ValidateDeposit(amount decimal.Decimal, _ *models.Account) error {
	if amount.LessThan(minDepositAmount) {
		return &ValidationError{
			Code:   CodeBelowMinimum,
			Amount: amount,
			Msg:    fmt.Sprintf("deposit must be at least %s", minDepositAmount),
		}
	}
	return nil
}

// ValidateWithdrawal enforces the withdrawal floor, ceiling and the balance
// guard, in that order. The first violated check is reported.
func ValidateWithdrawal(amount decimal.Decimal, acct *models.Account) error {
	if amount.LessThan(minWithdrawalAmount) {
		return &ValidationError{
			Code:   CodeBelowMinimum,
			Amount: amount,
			Msg:    fmt.Sprintf("withdrawal must be at least %s", minWithdrawalAmount),
		}
	}
	if amount.GreaterThan(maxWithdrawalAmount) {
		return &ValidationError{
			Code:   CodeAboveMaximum,
			Amount: amount,
			Msg:    fmt.Sprintf("withdrawal must be at most %s", maxWithdrawalAmount),
		}
	}
	if amount.GreaterThan(acct.Balance) {
		return &ValidationError{
			Code:   CodeInsufficientFunds,
			Amount: amount,
			Msg:    fmt.Sprintf("withdrawal exceeds balance of %s", acct.Balance),
		}
	}
	return nil
}

// ValidateLoanRequest requires a positive amount. The active-loan cap is
// checked at request time, not here.
func ValidateLoanRequest(amount decimal.Decimal, _ *models.Account) error {
	if !amount.IsPositive() {
		return &ValidationError{
			Code:   CodeBelowMinimum,
			Amount: amount,
			Msg:    "loan amount must be greater than zero",
		}
	}
	return nil
}

// ruleFor maps a transaction kind to its validation rule. LOAN_PAID has no
// rule because payoff never goes through Commit directly.
func ruleFor(kind models.TransactionKind) (Rule, bool) {
	switch kind {
	case models.KindDeposit:
		return ValidateDeposit, true
	case models.KindWithdrawal:
		return ValidateWithdrawal, true
	case models.KindLoan:
		return ValidateLoanRequest, true
	default:
		return nil, false
	}
}
