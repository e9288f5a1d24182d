package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/corebank/ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRequestLoan(t *testing.T) {
	acct := &models.Account{ID: "acct-1", Balance: dec("0")}

	t.Run("under the cap", func(t *testing.T) {
		store := new(MockStore)
		store.On("CountApprovedLoans", mock.Anything, "acct-1").Return(2, nil)
		store.On("Account", mock.Anything, "acct-1").Return(acct, nil)
		store.On("CommitTransaction", mock.Anything, "acct-1", mock.Anything, decimal.Zero).
			Run(func(args mock.Arguments) {
				args.Get(2).(*models.Transaction).BalanceAfter = dec("0")
			}).
			Return(nil)

		txn, err := newTestEngine(store).RequestLoan(context.Background(), "acct-1", dec("5000"))

		assert.NoError(t, err)
		assert.Equal(t, models.KindLoan, txn.Kind)
		assert.False(t, txn.LoanApproved)
		assert.True(t, txn.BalanceAfter.IsZero())
		store.AssertExpectations(t)
	})

	t.Run("at the cap", func(t *testing.T) {
		store := new(MockStore)
		store.On("CountApprovedLoans", mock.Anything, "acct-1").Return(3, nil)

		_, err := newTestEngine(store).RequestLoan(context.Background(), "acct-1", dec("5000"))

		assert.ErrorIs(t, err, ErrLoanLimitExceeded)
		store.AssertNotCalled(t, "CommitTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unapproved requests do not count", func(t *testing.T) {
		// Three pending requests but only two approved: a fourth request goes through.
		store := new(MockStore)
		store.On("CountApprovedLoans", mock.Anything, "acct-1").Return(2, nil)
		store.On("Account", mock.Anything, "acct-1").Return(acct, nil)
		store.On("CommitTransaction", mock.Anything, "acct-1", mock.Anything, decimal.Zero).Return(nil)

		_, err := newTestEngine(store).RequestLoan(context.Background(), "acct-1", dec("5000"))

		assert.NoError(t, err)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		store := new(MockStore)
		store.On("CountApprovedLoans", mock.Anything, "acct-1").Return(0, nil)
		store.On("Account", mock.Anything, "acct-1").Return(acct, nil)

		_, err := newTestEngine(store).RequestLoan(context.Background(), "acct-1", dec("0"))

		var verr *ValidationError
		assert.True(t, errors.As(err, &verr))
	})
}

func TestApproveLoan(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		store := new(MockStore)
		store.On("Transaction", mock.Anything, "loan-1").
			Return(&models.Transaction{ID: "loan-1", Kind: models.KindLoan}, nil)
		store.On("ApproveLoan", mock.Anything, "loan-1").Return(nil)

		err := newTestEngine(store).ApproveLoan(context.Background(), "loan-1")

		assert.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("idempotent on approved loan", func(t *testing.T) {
		store := new(MockStore)
		store.On("Transaction", mock.Anything, "loan-1").
			Return(&models.Transaction{ID: "loan-1", Kind: models.KindLoan, LoanApproved: true}, nil)

		err := newTestEngine(store).ApproveLoan(context.Background(), "loan-1")

		assert.NoError(t, err)
		store.AssertNotCalled(t, "ApproveLoan", mock.Anything, mock.Anything)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		store := new(MockStore)
		store.On("Transaction", mock.Anything, "nope").Return(nil, ErrTransactionNotFound)

		err := newTestEngine(store).ApproveLoan(context.Background(), "nope")

		assert.ErrorIs(t, err, ErrLoanNotFound)
	})

	t.Run("not a loan", func(t *testing.T) {
		store := new(MockStore)
		store.On("Transaction", mock.Anything, "txn-1").
			Return(&models.Transaction{ID: "txn-1", Kind: models.KindDeposit}, nil)

		err := newTestEngine(store).ApproveLoan(context.Background(), "txn-1")

		assert.ErrorIs(t, err, ErrLoanNotFound)
	})
}

func TestPayLoan(t *testing.T) {
	approved := &models.Transaction{
		ID:           "loan-1",
		AccountID:    "acct-1",
		Amount:       dec("2000"),
		Kind:         models.KindLoan,
		LoanApproved: true,
	}

	t.Run("success", func(t *testing.T) {
		settled := &models.Transaction{
			ID:           "loan-1",
			AccountID:    "acct-1",
			Amount:       dec("2000"),
			Kind:         models.KindLoanPaid,
			LoanApproved: true,
			BalanceAfter: dec("3000"),
		}

		store := new(MockStore)
		store.On("Transaction", mock.Anything, "loan-1").Return(approved, nil)
		store.On("SettleLoan", mock.Anything, "loan-1").Return(settled, nil)

		txn, err := newTestEngine(store).PayLoan(context.Background(), "loan-1")

		assert.NoError(t, err)
		assert.Equal(t, models.KindLoanPaid, txn.Kind)
		assert.True(t, txn.BalanceAfter.Equal(dec("3000")))
		store.AssertExpectations(t)
	})

	t.Run("not approved", func(t *testing.T) {
		store := new(MockStore)
		store.On("Transaction", mock.Anything, "loan-2").
			Return(&models.Transaction{ID: "loan-2", Kind: models.KindLoan}, nil)

		_, err := newTestEngine(store).PayLoan(context.Background(), "loan-2")

		assert.ErrorIs(t, err, ErrLoanNotApproved)
		store.AssertNotCalled(t, "SettleLoan", mock.Anything, mock.Anything)
	})

	t.Run("unknown loan", func(t *testing.T) {
		store := new(MockStore)
		store.On("Transaction", mock.Anything, "nope").Return(nil, ErrTransactionNotFound)

		_, err := newTestEngine(store).PayLoan(context.Background(), "nope")

		assert.ErrorIs(t, err, ErrLoanNotFound)
	})

	t.Run("already paid", func(t *testing.T) {
		store := new(MockStore)
		store.On("Transaction", mock.Anything, "loan-3").
			Return(&models.Transaction{ID: "loan-3", Kind: models.KindLoanPaid}, nil)

		_, err := newTestEngine(store).PayLoan(context.Background(), "loan-3")

		assert.ErrorIs(t, err, ErrLoanNotFound)
	})

	t.Run("insufficient funds under lock", func(t *testing.T) {
		store := new(MockStore)
		store.On("Transaction", mock.Anything, "loan-1").Return(approved, nil)
		store.On("SettleLoan", mock.Anything, "loan-1").
			Return(nil, &ValidationError{Code: CodeInsufficientFunds, Msg: "loan amount not below balance"})

		_, err := newTestEngine(store).PayLoan(context.Background(), "loan-1")

		var verr *ValidationError
		assert.True(t, errors.As(err, &verr))
		assert.Equal(t, CodeInsufficientFunds, verr.Code)
	})
}
