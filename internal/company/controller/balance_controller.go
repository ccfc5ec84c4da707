package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type BalanceUseCase interface {
	AdjustBalance(ctx context.Context, adj domain.BalanceAdjustment) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, companyID int64) ([]domain.CreditTransaction, error)
}

type AdjustBalanceRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	Forced      bool            `json:"forced"`
}

type AdjustBalanceResponse struct {
	TraceID   string          `json:"traceId"`
	CompanyID int64           `json:"companyId"`
	Balance   decimal.Decimal `json:"balance"`
	Timestamp time.Time       `json:"timestamp"`
}

type CreditTransactionDTO struct {
	ID           int64           `json:"id"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Description  string          `json:"description"`
	Forced       bool            `json:"forced"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type ListTransactionsResponse struct {
	TraceID      string                 `json:"traceId"`
	CompanyID    int64                  `json:"companyId"`
	Transactions []CreditTransactionDTO `json:"transactions"`
}

type BalanceController struct {
	useCase BalanceUseCase
	logger  *zap.Logger
}

func NewBalanceController(useCase BalanceUseCase, logger *zap.Logger) *BalanceController {
	return &BalanceController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *BalanceController) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	companyID, ok := c.parseCompanyID(w, r, traceID, logger)
	if !ok {
		return
	}

	var req AdjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		api.WriteValidationError(w, traceID, "invalid JSON body", logger, apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if req.Description == "" {
		api.WriteValidationError(w, traceID, "validation failed", logger, apperrors.ValidationDetail{
			Field:   "description",
			Message: "description is required",
		})
		return
	}

	balance, err := c.useCase.AdjustBalance(r.Context(), domain.BalanceAdjustment{
		CompanyID:   companyID,
		Amount:      req.Amount,
		Kind:        domain.CreditTransactionKind(req.Kind),
		Description: req.Description,
		Forced:      req.Forced,
	})
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, AdjustBalanceResponse{
		TraceID:   traceID,
		CompanyID: companyID,
		Balance:   balance,
		Timestamp: time.Now().UTC(),
	}, logger)
}

func (c *BalanceController) ListTransactions(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	companyID, ok := c.parseCompanyID(w, r, traceID, logger)
	if !ok {
		return
	}

	entries, err := c.useCase.ListTransactions(r.Context(), companyID)
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	out := make([]CreditTransactionDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, CreditTransactionDTO{
			ID:           e.ID,
			Kind:         string(e.Kind),
			Amount:       e.Amount,
			BalanceAfter: e.BalanceAfter,
			Description:  e.Description,
			Forced:       e.Forced,
			CreatedAt:    e.CreatedAt,
		})
	}

	api.WriteJSON(w, http.StatusOK, ListTransactionsResponse{
		TraceID:      traceID,
		CompanyID:    companyID,
		Transactions: out,
	}, logger)
}

func (c *BalanceController) parseCompanyID(w http.ResponseWriter, r *http.Request, traceID string, logger *zap.Logger) (int64, bool) {
	companyID, err := strconv.ParseInt(chi.URLParam(r, "companyId"), 10, 64)
	if err != nil || companyID <= 0 {
		logger.Warn("invalid companyId in path", zap.String("companyId", chi.URLParam(r, "companyId")))
		api.WriteValidationError(w, traceID, "invalid companyId", logger, apperrors.ValidationDetail{
			Field:   "companyId",
			Message: "companyId must be a positive integer",
		})
		return 0, false
	}
	return companyID, true
}
