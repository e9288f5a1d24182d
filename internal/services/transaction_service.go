// Package services exposes the ledger over HTTP. Each service struct holds
// its dependencies and its methods are chi-compatible handlers.
package services

import (
	"net/http"
	"time"

	"github.com/corebank/ledger/internal/ledger"
	mw "github.com/corebank/ledger/internal/middleware"
	"github.com/corebank/ledger/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20 // 1 MB

const reportDateLayout = "2006-01-02"

type TransactionService struct {
	engine    *ledger.Engine
	cache     *balanceCache
	validator *ValidationHelper
	log       zerolog.Logger
}

func NewTransactionService(engine *ledger.Engine, rdb *redis.Client, log zerolog.Logger) *TransactionService {
	return &TransactionService{
		engine:    engine,
		cache:     newBalanceCache(rdb),
		validator: NewValidationHelper(),
		log:       log,
	}
}

// AmountRequest is the body for deposit, withdrawal and loan requests.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
}

// TransactionResponse is the structured outcome of a successful commit.
type TransactionResponse struct {
	Transaction *models.Transaction `json:"transaction"`
}

// Deposit posts a deposit to the authenticated account.
func (ts *TransactionService) Deposit(w http.ResponseWriter, r *http.Request) {
	ts.commit(w, r, models.KindDeposit)
}

// Withdraw posts a withdrawal from the authenticated account.
func (ts *TransactionService) Withdraw(w http.ResponseWriter, r *http.Request) {
	ts.commit(w, r, models.KindWithdrawal)
}

func (ts *TransactionService) commit(w http.ResponseWriter, r *http.Request, kind models.TransactionKind) {
	accountID := mw.AccountID(r.Context())

	req, ok := ts.decodeAmount(w, r)
	if !ok {
		return
	}

	txn, err := ts.engine.Commit(r.Context(), accountID, kind, req.Amount)
	if err != nil {
		SendDomainError(w, err)
		return
	}

	ts.cache.Invalidate(r.Context(), accountID)
	writeJSON(w, http.StatusCreated, TransactionResponse{Transaction: txn})
}

func (ts *TransactionService) decodeAmount(w http.ResponseWriter, r *http.Request) (AmountRequest, bool) {
	var req AmountRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := decodeStrict(r, &req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return req, false
	}

	if err := ts.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return req, false
	}

	return req, true
}

// Report returns the account's transaction history and a total.
// With start_date and end_date (YYYY-MM-DD, both required together, both
// inclusive) the listing is restricted to the range and the total is the
// ledger-wide amount sum for that range; without them the total is the
// current balance.
func (ts *TransactionService) Report(w http.ResponseWriter, r *http.Request) {
	accountID := mw.AccountID(r.Context())

	rng, ok := ts.parseRange(w, r)
	if !ok {
		return
	}

	report, err := ts.engine.Report(r.Context(), accountID, rng)
	if err != nil {
		SendDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (ts *TransactionService) parseRange(w http.ResponseWriter, r *http.Request) (*ledger.DateRange, bool) {
	startStr := r.URL.Query().Get("start_date")
	endStr := r.URL.Query().Get("end_date")

	if startStr == "" && endStr == "" {
		return nil, true
	}
	if startStr == "" || endStr == "" {
		SendErrorResponse(w, "start_date and end_date must be provided together", http.StatusBadRequest, nil)
		return nil, false
	}

	start, err := time.ParseInLocation(reportDateLayout, startStr, time.UTC)
	if err != nil {
		SendErrorResponse(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest, nil)
		return nil, false
	}
	end, err := time.ParseInLocation(reportDateLayout, endStr, time.UTC)
	if err != nil {
		SendErrorResponse(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest, nil)
		return nil, false
	}
	if end.Before(start) {
		SendErrorResponse(w, "end_date must not be before start_date", http.StatusBadRequest, nil)
		return nil, false
	}

	return &ledger.DateRange{Start: start, End: end}, true
}
