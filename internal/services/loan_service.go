package services

import (
	"net/http"

	"github.com/corebank/ledger/internal/ledger"
	mw "github.com/corebank/ledger/internal/middleware"
	"github.com/corebank/ledger/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

type LoanService struct {
	engine    *ledger.Engine
	cache     *balanceCache
	validator *ValidationHelper
	log       zerolog.Logger
}

func NewLoanService(engine *ledger.Engine, rdb *redis.Client, log zerolog.Logger) *LoanService {
	return &LoanService{
		engine:    engine,
		cache:     newBalanceCache(rdb),
		validator: NewValidationHelper(),
		log:       log,
	}
}

// Request submits a loan request for the authenticated account. The balance
// is untouched until payoff; the request is rejected outright once the
// account carries the maximum number of approved loans.
func (ls *LoanService) Request(w http.ResponseWriter, r *http.Request) {
	accountID := mw.AccountID(r.Context())

	req, ok := ls.decodeAmount(w, r)
	if !ok {
		return
	}

	txn, err := ls.engine.RequestLoan(r.Context(), accountID, req.Amount)
	if err != nil {
		SendDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, TransactionResponse{Transaction: txn})
}

// List returns the authenticated account's outstanding loan requests.
func (ls *LoanService) List(w http.ResponseWriter, r *http.Request) {
	accountID := mw.AccountID(r.Context())

	loans, err := ls.engine.Loans(r.Context(), accountID)
	if err != nil {
		SendDomainError(w, err)
		return
	}
	if loans == nil {
		loans = []models.Transaction{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"loans": loans})
}

// Approve marks a loan request approved. Repeat approvals are no-ops.
func (ls *LoanService) Approve(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "loanID")

	if err := ls.engine.ApproveLoan(r.Context(), loanID); err != nil {
		SendDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

// Pay settles an approved loan against the authenticated account's balance.
func (ls *LoanService) Pay(w http.ResponseWriter, r *http.Request) {
	accountID := mw.AccountID(r.Context())
	loanID := chi.URLParam(r, "loanID")

	txn, err := ls.engine.PayLoan(r.Context(), loanID)
	if err != nil {
		SendDomainError(w, err)
		return
	}

	ls.cache.Invalidate(r.Context(), accountID)
	writeJSON(w, http.StatusOK, TransactionResponse{Transaction: txn})
}

func (ls *LoanService) decodeAmount(w http.ResponseWriter, r *http.Request) (AmountRequest, bool) {
	var req AmountRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := decodeStrict(r, &req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return req, false
	}
	if err := ls.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return req, false
	}

	return req, true
}
