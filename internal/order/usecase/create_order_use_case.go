package usecase

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/order/service"
)

var tracer = otel.Tracer("storefront/order")

const eventPublishTimeout = 2 * time.Second

type OrderSettings struct {
	Currency               string
	DefaultPaymentTermDays int
	MaxRetryAttempts       int
}

type CreateOrderDeps struct {
	TxManager    Transactor
	Carts        CartRepository
	Rules        RuleValidator
	Reservations StockReserver
	Prices       PriceChecker
	Numbers      NumberGenerator
	Totals       TotalsCalculator
	Orders       OrderRepository
	Items        OrderItemRepository
	StateMachine StateMachine
	Idempotency  IdempotencyStore
	Events       EventPublisher
	Metrics      Metrics
}

// CreateOrderUseCase places B2C and B2B orders. Each attempt runs in one
// transaction: rules, reservation, price check, numbering, persistence and
// cart clearing commit together or not at all.
type CreateOrderUseCase struct {
	deps     CreateOrderDeps
	settings OrderSettings
	logger   *zap.Logger
	now      func() time.Time
}

func NewCreateOrderUseCase(deps CreateOrderDeps, settings OrderSettings, logger *zap.Logger) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		deps:     deps,
		settings: settings,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *CreateOrderUseCase) CreateB2C(ctx context.Context, in dto.CreateB2COrderInput) (*dto.OrderResult, error) {
	ctx, span := tracer.Start(ctx, "order.CreateB2C")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("customer.id", in.CustomerID),
		attribute.Bool("order.from_cart", len(in.Items) == 0),
	)

	return uc.create(ctx, domain.OrderTypeB2C, in.IdempotencyKey, func(ctx context.Context, tx *sql.Tx) (*domain.Order, error) {
		return uc.placeB2C(ctx, tx, in)
	})
}

func (uc *CreateOrderUseCase) CreateB2B(ctx context.Context, in dto.CreateB2BOrderInput) (*dto.OrderResult, error) {
	ctx, span := tracer.Start(ctx, "order.CreateB2B")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("customer.id", in.CustomerID),
		attribute.Int64("company.id", in.CompanyID),
	)

	return uc.create(ctx, domain.OrderTypeB2B, in.IdempotencyKey, func(ctx context.Context, tx *sql.Tx) (*domain.Order, error) {
		return uc.placeB2B(ctx, tx, in)
	})
}

func (uc *CreateOrderUseCase) create(
	ctx context.Context,
	orderType domain.OrderType,
	idempotencyKey string,
	place func(ctx context.Context, tx *sql.Tx) (*domain.Order, error),
) (*dto.OrderResult, error) {
	start := uc.now()
	span := trace.SpanFromContext(ctx)
	scope := strings.ToLower(string(orderType))

	if idempotencyKey != "" {
		claim, err := uc.deps.Idempotency.Claim(ctx, scope, idempotencyKey)
		switch {
		case err != nil:
			uc.logger.Warn("idempotency store unavailable, continuing without it", zap.Error(err))
			idempotencyKey = ""
		case claim.OrderID != 0:
			order, err := uc.loadOrder(ctx, claim.OrderID)
			if err != nil {
				return nil, err
			}
			uc.deps.Metrics.IdempotentReplay(ctx, string(orderType))
			uc.logger.Info("idempotent replay", zap.Int64("orderId", order.ID), zap.String("orderNumber", order.OrderNumber))
			return &dto.OrderResult{Order: order, Replayed: true}, nil
		case claim.InProgress():
			return nil, apperrors.NewRetryableError("an order with this idempotency key is still being processed", nil)
		}
	}

	uc.logger.Info("order placement started", zap.String("orderType", string(orderType)))

	var order *domain.Order
	err := mysql.RetryOnContention(ctx, uc.settings.MaxRetryAttempts, uc.logger, func(ctx context.Context) error {
		return uc.deps.TxManager.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
			var err error
			order, err = place(ctx, tx)
			return err
		})
	})
	if err != nil {
		span.RecordError(err)
		if idempotencyKey != "" {
			if relErr := uc.deps.Idempotency.Release(context.WithoutCancel(ctx), scope, idempotencyKey); relErr != nil {
				uc.logger.Warn("releasing idempotency key failed", zap.Error(relErr))
			}
		}
		uc.deps.Metrics.OrderFailed(ctx, string(orderType), apperrors.CodeOf(err), uc.now().Sub(start))

		if apperrors.IsDomainError(err) {
			uc.logger.Info("order rejected", zap.String("orderType", string(orderType)), zap.String("code", apperrors.CodeOf(err)), zap.Error(err))
			return nil, err
		}
		uc.logger.Error("order placement failed", zap.String("orderType", string(orderType)), zap.Error(err))
		return nil, apperrors.NewInternalError("placing order", err)
	}

	if idempotencyKey != "" {
		if err := uc.deps.Idempotency.Complete(context.WithoutCancel(ctx), scope, idempotencyKey, order.ID); err != nil {
			uc.logger.Warn("storing idempotency result failed", zap.Int64("orderId", order.ID), zap.Error(err))
		}
	}

	span.SetAttributes(attribute.Int64("order.id", order.ID), attribute.String("order.number", order.OrderNumber))
	publishEvent(ctx, uc.deps.Events, uc.logger, domain.NewOrderEvent(domain.EventOrderCreated, order, "", order.Total, uc.now()))
	uc.deps.Metrics.OrderCreated(ctx, string(orderType), uc.now().Sub(start))

	uc.logger.Info("order created",
		zap.Int64("orderId", order.ID),
		zap.String("orderNumber", order.OrderNumber),
		zap.String("orderType", string(orderType)),
		zap.String("status", string(order.Status)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return &dto.OrderResult{Order: order}, nil
}

func (uc *CreateOrderUseCase) placeB2C(ctx context.Context, tx *sql.Tx, in dto.CreateB2COrderInput) (*domain.Order, error) {
	lines := in.Items
	var cart *domain.Cart

	if len(lines) == 0 {
		var err error
		cart, err = uc.deps.Carts.FindActiveByCustomerIDForUpdate(ctx, tx, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if cart.IsEmpty() {
			return nil, apperrors.NewBusinessRuleError(service.RuleEmptyCart, "cart is empty")
		}
		lines = domain.LinesFromCart(cart)
	}

	if err := uc.deps.Rules.ValidateB2C(ctx, tx, in.CustomerID, lines); err != nil {
		return nil, err
	}

	now := uc.now()
	order := &domain.Order{
		CustomerID:        in.CustomerID,
		Type:              domain.OrderTypeB2C,
		Status:            domain.StatusPending,
		Currency:          uc.settings.Currency,
		BillingAddressID:  in.BillingAddressID,
		ShippingAddressID: in.ShippingAddressID,
		CouponCode:        in.CouponCode,
		Notes:             in.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := uc.fulfil(ctx, tx, order, lines, now); err != nil {
		return nil, err
	}

	if cart != nil {
		if err := uc.deps.Carts.DeleteByID(ctx, tx, cart.ID); err != nil {
			return nil, err
		}
		uc.logger.Debug("cart cleared", zap.Int64("cartId", cart.ID), zap.Int64("orderId", order.ID))
	}

	return order, nil
}

func (uc *CreateOrderUseCase) placeB2B(ctx context.Context, tx *sql.Tx, in dto.CreateB2BOrderInput) (*domain.Order, error) {
	company, err := uc.deps.Rules.ValidateB2B(ctx, tx, in.CustomerID, in.CompanyID, in.Items)
	if err != nil {
		return nil, err
	}

	terms := company.PaymentTermDays
	if terms <= 0 {
		terms = uc.settings.DefaultPaymentTermDays
	}

	now := uc.now()
	due := now.AddDate(0, 0, terms)
	companyID := company.ID
	order := &domain.Order{
		CustomerID:          in.CustomerID,
		CompanyID:           &companyID,
		Type:                domain.OrderTypeB2B,
		Status:              domain.StatusApproved,
		Currency:            uc.settings.Currency,
		BillingAddressID:    in.BillingAddressID,
		ShippingAddressID:   in.ShippingAddressID,
		Notes:               in.Notes,
		PaymentTermDays:     &terms,
		DueDate:             &due,
		PurchaseOrderNumber: in.PurchaseOrderNumber,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := uc.fulfil(ctx, tx, order, in.Items, now); err != nil {
		return nil, err
	}

	if err := uc.deps.StateMachine.RecordApproval(ctx, tx, order, nil); err != nil {
		return nil, err
	}

	return order, nil
}

// fulfil reserves stock, checks prices against the rows it just locked,
// numbers and prices the order, then writes it with its items. Every read goes
// through tx so a placement never needs a second pool connection.
func (uc *CreateOrderUseCase) fulfil(ctx context.Context, tx *sql.Tx, order *domain.Order, lines []domain.OrderLine, now time.Time) error {
	variants, err := uc.deps.Reservations.Reserve(ctx, tx, domain.ReservationItemsFromLines(lines))
	if err != nil {
		return err
	}

	if err := uc.deps.Prices.Validate(lines, variants); err != nil {
		return err
	}

	number, err := uc.deps.Numbers.Generate(ctx, tx, now.Year())
	if err != nil {
		return err
	}
	order.OrderNumber = number

	if err := uc.deps.Totals.Apply(order, lines, variants, now); err != nil {
		return err
	}

	orderID, err := uc.deps.Orders.Insert(ctx, tx, order)
	if err != nil {
		return err
	}
	order.ID = orderID

	for i := range order.Items {
		order.Items[i].OrderID = orderID
		itemID, err := uc.deps.Items.Insert(ctx, tx, order.Items[i])
		if err != nil {
			return err
		}
		order.Items[i].ID = itemID
	}

	return nil
}

func (uc *CreateOrderUseCase) loadOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	return loadOrderWithItems(ctx, uc.deps.Orders, uc.deps.Items, orderID)
}

func loadOrderWithItems(ctx context.Context, orders OrderRepository, items OrderItemRepository, orderID int64) (*domain.Order, error) {
	order, err := orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.Items, err = items.FindByOrderID(ctx, nil, orderID)
	if err != nil {
		return nil, err
	}

	return order, nil
}

// publishEvent never fails the caller: the state change has already committed.
func publishEvent(ctx context.Context, events EventPublisher, logger *zap.Logger, event domain.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	if err := events.Publish(ctx, event); err != nil {
		logger.Warn("publishing order event failed",
			zap.String("eventType", string(event.Type)),
			zap.Int64("orderId", event.OrderID),
			zap.Error(err),
		)
	}
}
