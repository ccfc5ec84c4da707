package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
)

// retryAfterSeconds is sent with 503 responses caused by lock contention.
const retryAfterSeconds = 1

type ErrorResponse struct {
	TraceID   string      `json:"traceId"`
	Error     string      `json:"error"`
	Code      string      `json:"code,omitempty"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type StockUnavailableDetails struct {
	VariantID   int64  `json:"variantId"`
	ProductName string `json:"productName"`
	Available   int    `json:"available"`
	Requested   int    `json:"requested"`
}

type TransitionDetails struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

type CreditLimitDetails struct {
	CompanyID      int64           `json:"companyId"`
	CreditLimit    decimal.Decimal `json:"creditLimit"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	Requested      decimal.Decimal `json:"requested"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func WriteValidationError(w http.ResponseWriter, traceID, message string, logger *zap.Logger, details ...apperrors.ValidationDetail) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		TraceID:   traceID,
		Error:     apperrors.CodeValidation,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}, logger)
}

// WriteError maps a use case error onto its HTTP status and error body.
// Anything that is not a known domain error is logged and hidden behind a
// generic 500.
func WriteError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	resp := ErrorResponse{
		TraceID:   traceID,
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
	status := http.StatusInternalServerError

	if ve, ok := apperrors.IsValidationError(err); ok {
		status, resp.Error, resp.Message, resp.Details = http.StatusBadRequest, apperrors.CodeValidation, ve.Message, ve.Details
	} else if _, ok := apperrors.IsNotFoundError(err); ok {
		status, resp.Error = http.StatusNotFound, apperrors.CodeNotFound
	} else if bre, ok := apperrors.IsBusinessRuleError(err); ok {
		status, resp.Error, resp.Code, resp.Message = http.StatusUnprocessableEntity, apperrors.CodeBusinessRule, bre.Code, bre.Message
	} else if cle, ok := apperrors.IsCreditLimitExceededError(err); ok {
		status, resp.Error = http.StatusUnprocessableEntity, apperrors.CodeCreditLimitExceeded
		resp.Details = CreditLimitDetails{
			CompanyID:      cle.CompanyID,
			CreditLimit:    cle.CreditLimit,
			CurrentBalance: cle.CurrentBalance,
			Requested:      cle.Requested,
		}
	} else if _, ok := apperrors.IsInvalidTransactionTypeError(err); ok {
		status, resp.Error = http.StatusBadRequest, apperrors.CodeInvalidTransactionType
	} else if sue, ok := apperrors.IsStockUnavailableError(err); ok {
		status, resp.Error = http.StatusConflict, apperrors.CodeStockUnavailable
		resp.Details = StockUnavailableDetails{
			VariantID:   sue.VariantID,
			ProductName: sue.ProductName,
			Available:   sue.Available,
			Requested:   sue.Requested,
		}
	} else if pce, ok := apperrors.IsPriceChangedError(err); ok {
		status, resp.Error, resp.Details = http.StatusConflict, apperrors.CodePriceChanged, pce.Mismatches
	} else if ite, ok := apperrors.IsInvalidTransitionError(err); ok {
		status, resp.Error = http.StatusConflict, apperrors.CodeInvalidTransition
		resp.Details = TransitionDetails{From: ite.From, To: ite.To, Reason: ite.Reason}
	} else if _, ok := apperrors.IsRetryableError(err); ok {
		status, resp.Error = http.StatusServiceUnavailable, apperrors.CodeRetryable
		resp.Message = "the request conflicted with concurrent activity, retry later"
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		logger.Warn("request failed with retryable error", zap.Error(err))
	} else {
		resp.Error = apperrors.CodeInternal
		resp.Message = "an unexpected error occurred"
		logger.Error("unexpected error", zap.Error(err))
	}

	WriteJSON(w, status, resp, logger)
}
