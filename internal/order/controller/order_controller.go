package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
)

const (
	maxItemsPerRequest = 100
	maxQuantity        = 10000
	maxReasonLength    = 255
	idempotencyHeader  = "Idempotency-Key"
)

type CreateOrderUseCase interface {
	CreateB2C(ctx context.Context, in dto.CreateB2COrderInput) (*dto.OrderResult, error)
	CreateB2B(ctx context.Context, in dto.CreateB2BOrderInput) (*dto.OrderResult, error)
}

type LifecycleUseCase interface {
	TransitionOrder(ctx context.Context, in dto.TransitionInput) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	GetHistory(ctx context.Context, orderID int64) ([]domain.OrderStatusHistory, error)
	GetValidNextStates(ctx context.Context, orderID int64) (domain.OrderStatus, []domain.OrderStatus, error)
}

type RefundUseCase interface {
	Refund(ctx context.Context, in dto.RefundInput) (*domain.Order, error)
}

type OrderController struct {
	create    CreateOrderUseCase
	lifecycle LifecycleUseCase
	refund    RefundUseCase
	logger    *zap.Logger
}

func NewOrderController(create CreateOrderUseCase, lifecycle LifecycleUseCase, refund RefundUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		create:    create,
		lifecycle: lifecycle,
		refund:    refund,
		logger:    logger,
	}
}

func (c *OrderController) CreateB2C(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateB2COrderRequest
	if !c.decode(w, r, traceID, logger, &req) {
		return
	}

	details := validateCommon(req.CustomerID, req.BillingAddressID, req.ShippingAddressID)
	details = append(details, validateItems(req.Items, false)...)
	if len(details) > 0 {
		api.WriteValidationError(w, traceID, "validation failed", logger, details...)
		return
	}

	result, err := c.create.CreateB2C(r.Context(), dto.CreateB2COrderInput{
		CustomerID:        req.CustomerID,
		Items:             toOrderLines(req.Items),
		BillingAddressID:  req.BillingAddressID,
		ShippingAddressID: req.ShippingAddressID,
		CouponCode:        req.CouponCode,
		Notes:             req.Notes,
		IdempotencyKey:    r.Header.Get(idempotencyHeader),
	})
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	c.writeCreated(w, traceID, result, logger)
}

func (c *OrderController) CreateB2B(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateB2BOrderRequest
	if !c.decode(w, r, traceID, logger, &req) {
		return
	}

	details := validateCommon(req.CustomerID, req.BillingAddressID, req.ShippingAddressID)
	if req.CompanyID <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "companyId", Message: "companyId must be a positive integer"})
	}
	details = append(details, validateItems(req.Items, true)...)
	if len(details) > 0 {
		api.WriteValidationError(w, traceID, "validation failed", logger, details...)
		return
	}

	result, err := c.create.CreateB2B(r.Context(), dto.CreateB2BOrderInput{
		CustomerID:          req.CustomerID,
		CompanyID:           req.CompanyID,
		Items:               toOrderLines(req.Items),
		BillingAddressID:    req.BillingAddressID,
		ShippingAddressID:   req.ShippingAddressID,
		PurchaseOrderNumber: req.PurchaseOrderNumber,
		Notes:               req.Notes,
		IdempotencyKey:      r.Header.Get(idempotencyHeader),
	})
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	c.writeCreated(w, traceID, result, logger)
}

func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parseOrderID(w, r, traceID, logger)
	if !ok {
		return
	}

	order, err := c.lifecycle.GetOrder(r.Context(), orderID)
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, dto.OrderResponse{
		TraceID:   traceID,
		Order:     dto.NewOrderDTO(order),
		Timestamp: time.Now().UTC(),
	}, logger)
}

func (c *OrderController) GetHistory(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parseOrderID(w, r, traceID, logger)
	if !ok {
		return
	}

	entries, err := c.lifecycle.GetHistory(r.Context(), orderID)
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, dto.StatusHistoryResponse{
		TraceID: traceID,
		OrderID: orderID,
		History: dto.NewStatusHistoryDTOs(entries),
	}, logger)
}

func (c *OrderController) GetNextStates(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parseOrderID(w, r, traceID, logger)
	if !ok {
		return
	}

	current, next, err := c.lifecycle.GetValidNextStates(r.Context(), orderID)
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	states := make([]string, 0, len(next))
	for _, s := range next {
		states = append(states, string(s))
	}

	api.WriteJSON(w, http.StatusOK, dto.NextStatesResponse{
		TraceID:    traceID,
		OrderID:    orderID,
		Status:     string(current),
		NextStates: states,
	}, logger)
}

func (c *OrderController) Transition(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parseOrderID(w, r, traceID, logger)
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if !c.decode(w, r, traceID, logger, &req) {
		return
	}

	var details []apperrors.ValidationDetail
	to, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		details = append(details, apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of PENDING, APPROVED, PROCESSING, SHIPPED, DELIVERED, CANCELLED, RETURNED",
		})
	}
	if req.Reason != nil && utf8.RuneCountInString(*req.Reason) > maxReasonLength {
		details = append(details, reasonTooLong())
	}
	if len(details) > 0 {
		api.WriteValidationError(w, traceID, "validation failed", logger, details...)
		return
	}

	order, err := c.lifecycle.TransitionOrder(r.Context(), dto.TransitionInput{
		OrderID: orderID,
		To:      to,
		Reason:  req.Reason,
		ActorID: req.ActorID,
	})
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, dto.OrderResponse{
		TraceID:   traceID,
		Order:     dto.NewOrderDTO(order),
		Timestamp: time.Now().UTC(),
	}, logger)
}

func (c *OrderController) Refund(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parseOrderID(w, r, traceID, logger)
	if !ok {
		return
	}

	var req dto.RefundRequest
	if !c.decode(w, r, traceID, logger, &req) {
		return
	}

	var details []apperrors.ValidationDetail
	if !req.Amount.IsPositive() {
		details = append(details, apperrors.ValidationDetail{Field: "amount", Message: "amount must be greater than zero"})
	}
	switch {
	case req.Reason == "":
		details = append(details, apperrors.ValidationDetail{Field: "reason", Message: "reason is required"})
	case utf8.RuneCountInString(req.Reason) > maxReasonLength:
		details = append(details, reasonTooLong())
	}
	if len(details) > 0 {
		api.WriteValidationError(w, traceID, "validation failed", logger, details...)
		return
	}

	order, err := c.refund.Refund(r.Context(), dto.RefundInput{
		OrderID: orderID,
		Amount:  req.Amount,
		Reason:  req.Reason,
		ActorID: req.ActorID,
	})
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, dto.RefundResponse{
		TraceID:        traceID,
		Order:          dto.NewOrderDTO(order),
		RefundedAmount: req.Amount,
		Timestamp:      time.Now().UTC(),
	}, logger)
}

func (c *OrderController) writeCreated(w http.ResponseWriter, traceID string, result *dto.OrderResult, logger *zap.Logger) {
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	api.WriteJSON(w, status, dto.OrderResponse{
		TraceID:   traceID,
		Order:     dto.NewOrderDTO(result.Order),
		Replayed:  result.Replayed,
		Timestamp: time.Now().UTC(),
	}, logger)
}

func (c *OrderController) decode(w http.ResponseWriter, r *http.Request, traceID string, logger *zap.Logger, into interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		api.WriteValidationError(w, traceID, "invalid JSON body", logger, apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return false
	}
	return true
}

func (c *OrderController) parseOrderID(w http.ResponseWriter, r *http.Request, traceID string, logger *zap.Logger) (int64, bool) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil || orderID <= 0 {
		logger.Warn("invalid orderId in path", zap.String("orderId", chi.URLParam(r, "orderId")))
		api.WriteValidationError(w, traceID, "invalid orderId", logger, apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return 0, false
	}
	return orderID, true
}

func validateCommon(customerID, billingAddressID, shippingAddressID int64) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail

	if customerID <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "customerId", Message: "customerId must be a positive integer"})
	}
	if billingAddressID <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "billingAddressId", Message: "billingAddressId must be a positive integer"})
	}
	if shippingAddressID <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "shippingAddressId", Message: "shippingAddressId must be a positive integer"})
	}

	return details
}

func validateItems(items []dto.OrderItemRequest, required bool) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail

	if required && len(items) == 0 {
		details = append(details, apperrors.ValidationDetail{Field: "items", Message: "items must not be empty"})
	}

	if len(items) > maxItemsPerRequest {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items exceeds maximum of " + strconv.Itoa(maxItemsPerRequest),
		})
	}

	seen := make(map[int64]bool)
	for idx, item := range items {
		prefix := "items[" + strconv.Itoa(idx) + "]"

		if item.VariantID <= 0 {
			details = append(details, apperrors.ValidationDetail{Field: prefix + ".variantId", Message: "each variantId must be a positive integer"})
		}

		if seen[item.VariantID] {
			details = append(details, apperrors.ValidationDetail{Field: prefix + ".variantId", Message: "variantId must not be duplicated"})
		}
		seen[item.VariantID] = true

		if item.Quantity < 1 || item.Quantity > maxQuantity {
			details = append(details, apperrors.ValidationDetail{Field: prefix + ".quantity", Message: "quantity must be between 1 and " + strconv.Itoa(maxQuantity)})
		}

		if item.UnitPrice == nil {
			details = append(details, apperrors.ValidationDetail{Field: prefix + ".unitPrice", Message: "unitPrice is required"})
		} else if item.UnitPrice.IsNegative() {
			details = append(details, apperrors.ValidationDetail{Field: prefix + ".unitPrice", Message: "unitPrice must be non-negative"})
		}
	}

	return details
}

func toOrderLines(items []dto.OrderItemRequest) []domain.OrderLine {
	if len(items) == 0 {
		return nil
	}
	lines := make([]domain.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.OrderLine{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: *item.UnitPrice,
		})
	}
	return lines
}

func reasonTooLong() apperrors.ValidationDetail {
	return apperrors.ValidationDetail{
		Field:   "reason",
		Message: "reason must be at most " + strconv.Itoa(maxReasonLength) + " characters",
	}
}
