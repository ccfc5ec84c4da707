package usecase

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/infrastructure/idempotency"
	"storefront/internal/order/service"
	"storefront/internal/payment"
)

type mockTransactor struct {
	calls int
}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	m.calls++
	return fn(ctx, nil)
}

type mockCartRepository struct {
	FindActiveByCustomerIDForUpdateFunc func(ctx context.Context, tx *sql.Tx, customerID int64) (*domain.Cart, error)
	DeleteByIDFunc                      func(ctx context.Context, tx *sql.Tx, cartID int64) error
}

func (m *mockCartRepository) FindActiveByCustomerIDForUpdate(ctx context.Context, tx *sql.Tx, customerID int64) (*domain.Cart, error) {
	return m.FindActiveByCustomerIDForUpdateFunc(ctx, tx, customerID)
}

func (m *mockCartRepository) DeleteByID(ctx context.Context, tx *sql.Tx, cartID int64) error {
	return m.DeleteByIDFunc(ctx, tx, cartID)
}

type mockRuleValidator struct {
	ValidateB2CFunc func(ctx context.Context, tx *sql.Tx, customerID int64, lines []domain.OrderLine) error
	ValidateB2BFunc func(ctx context.Context, tx *sql.Tx, customerID, companyID int64, lines []domain.OrderLine) (*domain.Company, error)
}

func (m *mockRuleValidator) ValidateB2C(ctx context.Context, tx *sql.Tx, customerID int64, lines []domain.OrderLine) error {
	return m.ValidateB2CFunc(ctx, tx, customerID, lines)
}

func (m *mockRuleValidator) ValidateB2B(ctx context.Context, tx *sql.Tx, customerID, companyID int64, lines []domain.OrderLine) (*domain.Company, error) {
	return m.ValidateB2BFunc(ctx, tx, customerID, companyID, lines)
}

type mockStockReserver struct {
	ReserveFunc func(ctx context.Context, tx *sql.Tx, items []domain.ReservationItem) ([]domain.ProductVariant, error)
}

func (m *mockStockReserver) Reserve(ctx context.Context, tx *sql.Tx, items []domain.ReservationItem) ([]domain.ProductVariant, error) {
	return m.ReserveFunc(ctx, tx, items)
}

type mockStockRestocker struct {
	RestockFunc func(ctx context.Context, tx *sql.Tx, items []domain.ReservationItem) error
}

func (m *mockStockRestocker) Restock(ctx context.Context, tx *sql.Tx, items []domain.ReservationItem) error {
	return m.RestockFunc(ctx, tx, items)
}

type mockPriceChecker struct {
	ValidateFunc func(lines []domain.OrderLine, locked []domain.ProductVariant) error
}

func (m *mockPriceChecker) Validate(lines []domain.OrderLine, locked []domain.ProductVariant) error {
	return m.ValidateFunc(lines, locked)
}

type mockNumberGenerator struct {
	GenerateFunc func(ctx context.Context, tx *sql.Tx, year int) (string, error)
}

func (m *mockNumberGenerator) Generate(ctx context.Context, tx *sql.Tx, year int) (string, error) {
	return m.GenerateFunc(ctx, tx, year)
}

type mockOrderRepository struct {
	InsertFunc            func(ctx context.Context, tx *sql.Tx, order *domain.Order) (int64, error)
	FindByIDFunc          func(ctx context.Context, id int64) (*domain.Order, error)
	FindByIDForUpdateFunc func(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error)
}

func (m *mockOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) (int64, error) {
	return m.InsertFunc(ctx, tx, order)
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error) {
	return m.FindByIDForUpdateFunc(ctx, tx, id)
}

type mockOrderItemRepository struct {
	InsertFunc        func(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (int64, error)
	FindByOrderIDFunc func(ctx context.Context, tx *sql.Tx, orderID int64) ([]domain.OrderItem, error)
}

func (m *mockOrderItemRepository) Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (int64, error) {
	return m.InsertFunc(ctx, tx, item)
}

func (m *mockOrderItemRepository) FindByOrderID(ctx context.Context, tx *sql.Tx, orderID int64) ([]domain.OrderItem, error) {
	return m.FindByOrderIDFunc(ctx, tx, orderID)
}

type mockHistoryReader struct {
	ListByOrderIDFunc func(ctx context.Context, orderID int64) ([]domain.OrderStatusHistory, error)
}

func (m *mockHistoryReader) ListByOrderID(ctx context.Context, orderID int64) ([]domain.OrderStatusHistory, error) {
	return m.ListByOrderIDFunc(ctx, orderID)
}

type mockStateMachine struct {
	TransitionFunc     func(ctx context.Context, tx *sql.Tx, orderID int64, to domain.OrderStatus, reason *string, actor *int64) (*service.StatusChange, error)
	RecordApprovalFunc func(ctx context.Context, tx *sql.Tx, order *domain.Order, actor *int64) error
	RecordRefundFunc   func(ctx context.Context, tx *sql.Tx, order *domain.Order, reason *string, actor *int64) (*service.StatusChange, error)
}

func (m *mockStateMachine) Transition(ctx context.Context, tx *sql.Tx, orderID int64, to domain.OrderStatus, reason *string, actor *int64) (*service.StatusChange, error) {
	return m.TransitionFunc(ctx, tx, orderID, to, reason, actor)
}

func (m *mockStateMachine) RecordApproval(ctx context.Context, tx *sql.Tx, order *domain.Order, actor *int64) error {
	return m.RecordApprovalFunc(ctx, tx, order, actor)
}

func (m *mockStateMachine) RecordRefund(ctx context.Context, tx *sql.Tx, order *domain.Order, reason *string, actor *int64) (*service.StatusChange, error) {
	return m.RecordRefundFunc(ctx, tx, order, reason, actor)
}

type mockLedger struct {
	AdjustBalanceFunc func(ctx context.Context, tx *sql.Tx, adj domain.BalanceAdjustment) (decimal.Decimal, error)
}

func (m *mockLedger) AdjustBalance(ctx context.Context, tx *sql.Tx, adj domain.BalanceAdjustment) (decimal.Decimal, error) {
	return m.AdjustBalanceFunc(ctx, tx, adj)
}

// memoryIdempotencyStore mirrors the Redis store's claim semantics.
type memoryIdempotencyStore struct {
	values   map[string]int64
	released []string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{values: map[string]int64{}}
}

func (m *memoryIdempotencyStore) Claim(ctx context.Context, scope, key string) (idempotency.Claim, error) {
	k := scope + ":" + key
	if id, ok := m.values[k]; ok {
		return idempotency.Claim{OrderID: id}, nil
	}
	m.values[k] = 0
	return idempotency.Claim{Acquired: true}, nil
}

func (m *memoryIdempotencyStore) Complete(ctx context.Context, scope, key string, orderID int64) error {
	m.values[scope+":"+key] = orderID
	return nil
}

func (m *memoryIdempotencyStore) Release(ctx context.Context, scope, key string) error {
	delete(m.values, scope+":"+key)
	m.released = append(m.released, scope+":"+key)
	return nil
}

type recordingPublisher struct {
	events []domain.OrderEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	p.events = append(p.events, event)
	return nil
}

type recordingGateway struct {
	refunds []payment.RefundRequest
	err     error
}

func (g *recordingGateway) Refund(ctx context.Context, req payment.RefundRequest) error {
	g.refunds = append(g.refunds, req)
	return g.err
}

type recordingMetrics struct {
	created     []string
	failed      []string
	transitions []string
	refunded    []string
	replays     []string
}

func (m *recordingMetrics) OrderCreated(ctx context.Context, orderType string, elapsed time.Duration) {
	m.created = append(m.created, orderType)
}

func (m *recordingMetrics) OrderFailed(ctx context.Context, orderType, code string, elapsed time.Duration) {
	m.failed = append(m.failed, code)
}

func (m *recordingMetrics) Transitioned(ctx context.Context, orderType, from, to string) {
	m.transitions = append(m.transitions, from+"->"+to)
}

func (m *recordingMetrics) Refunded(ctx context.Context, orderType string) {
	m.refunded = append(m.refunded, orderType)
}

func (m *recordingMetrics) IdempotentReplay(ctx context.Context, orderType string) {
	m.replays = append(m.replays, orderType)
}
