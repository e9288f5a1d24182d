package services

import (
	"net/http"

	"github.com/corebank/ledger/internal/ledger"
	mw "github.com/corebank/ledger/internal/middleware"
	"github.com/corebank/ledger/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type AccountService struct {
	accounts  ledger.AccountStore
	cache     *balanceCache
	validator *ValidationHelper
	log       zerolog.Logger
}

func NewAccountService(accounts ledger.AccountStore, rdb *redis.Client, log zerolog.Logger) *AccountService {
	return &AccountService{
		accounts:  accounts,
		cache:     newBalanceCache(rdb),
		validator: NewValidationHelper(),
		log:       log,
	}
}

// CreateAccountRequest opens a ledger account for an identity the upstream
// system already authenticated.
type CreateAccountRequest struct {
	AccountID      string          `json:"account_id" validate:"required"`
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"gte=0"`
}

// BalanceResponse is the balance enquiry payload.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// CreateAccount opens a new account with its opening balance.
func (as *AccountService) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := decodeStrict(r, &req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := as.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	acct := &models.Account{ID: req.AccountID, Balance: req.OpeningBalance}
	if err := as.accounts.CreateAccount(r.Context(), acct); err != nil {
		as.log.Error().Err(err).Str("account_id", req.AccountID).Msg("account creation failed")
		SendErrorResponse(w, "Failed to create account", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusCreated, acct)
}

// BalanceEnquiry returns the authenticated account's balance, serving from
// the cache when it can.
func (as *AccountService) BalanceEnquiry(w http.ResponseWriter, r *http.Request) {
	accountID := mw.AccountID(r.Context())

	if balance, ok := as.cache.Get(r.Context(), accountID); ok {
		writeJSON(w, http.StatusOK, BalanceResponse{AccountID: accountID, Balance: balance})
		return
	}

	acct, err := as.accounts.Account(r.Context(), accountID)
	if err != nil {
		SendDomainError(w, err)
		return
	}

	as.cache.Set(r.Context(), accountID, acct.Balance)
	writeJSON(w, http.StatusOK, BalanceResponse{AccountID: accountID, Balance: acct.Balance})
}
