package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/corebank/ledger/internal/ledger"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Code    string            `json:"code,omitempty"`    // Machine-readable failure code
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message}
	var fieldErrs validator.ValidationErrors
	if errors.As(validationErr, &fieldErrs) {
		errorResp.Details = make(map[string]string)
		for _, err := range fieldErrs {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}

	json.NewEncoder(w).Encode(errorResp)
}

// SendDomainError translates a ledger failure into an HTTP response.
// Validation failures are the caller's fault (400), business-state refusals
// are unprocessable (422) or conflicts (409), and unknown references are 404.
func SendDomainError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		status := http.StatusBadRequest
		if verr.Code == ledger.CodeInsufficientFunds {
			status = http.StatusUnprocessableEntity
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(ErrorResponse{Error: verr.Msg, Code: string(verr.Code)})
	case errors.Is(err, ledger.ErrLoanLimitExceeded):
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error(), Code: "LOAN_LIMIT_EXCEEDED"})
	case errors.Is(err, ledger.ErrLoanNotApproved):
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error(), Code: "LOAN_NOT_APPROVED"})
	case errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrLoanNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound):
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "internal error"})
	}
}

// decodeStrict decodes a JSON body, rejecting unknown fields.
func decodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
