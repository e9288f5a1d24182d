package services

import (
	"context"

	"github.com/corebank/ledger/internal/ledger"
	"github.com/corebank/ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Account(ctx context.Context, accountID string) (*models.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockStore) CreateAccount(ctx context.Context, acct *models.Account) error {
	args := m.Called(ctx, acct)
	return args.Error(0)
}

func (m *MockStore) Transaction(ctx context.Context, txnID string) (*models.Transaction, error) {
	args := m.Called(ctx, txnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockStore) ListTransactions(ctx context.Context, accountID string, rng *ledger.DateRange) ([]models.Transaction, error) {
	args := m.Called(ctx, accountID, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockStore) ListLoans(ctx context.Context, accountID string) ([]models.Transaction, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockStore) SumAmounts(ctx context.Context, rng ledger.DateRange) (decimal.Decimal, error) {
	args := m.Called(ctx, rng)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStore) CountApprovedLoans(ctx context.Context, accountID string) (int, error) {
	args := m.Called(ctx, accountID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) CommitTransaction(ctx context.Context, accountID string, txn *models.Transaction, delta decimal.Decimal) error {
	args := m.Called(ctx, accountID, txn, delta)
	return args.Error(0)
}

func (m *MockStore) ApproveLoan(ctx context.Context, loanID string) error {
	args := m.Called(ctx, loanID)
	return args.Error(0)
}

func (m *MockStore) SettleLoan(ctx context.Context, loanID string) (*models.Transaction, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}
