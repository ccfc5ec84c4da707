package service

import (
	"context"
	"database/sql"

	"storefront/internal/domain"
)

type mockSequenceRepository struct {
	NextSequenceFunc func(ctx context.Context, tx *sql.Tx, year int) (int, error)
}

func (m *mockSequenceRepository) NextSequence(ctx context.Context, tx *sql.Tx, year int) (int, error) {
	return m.NextSequenceFunc(ctx, tx, year)
}

type mockCustomerReader struct {
	FindByIDInTxFunc func(ctx context.Context, tx *sql.Tx, id int64) (*domain.Customer, error)
}

func (m *mockCustomerReader) FindByIDInTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.Customer, error) {
	return m.FindByIDInTxFunc(ctx, tx, id)
}

type mockCompanyReader struct {
	FindByIDInTxFunc func(ctx context.Context, tx *sql.Tx, id int64) (*domain.Company, error)
}

func (m *mockCompanyReader) FindByIDInTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.Company, error) {
	return m.FindByIDInTxFunc(ctx, tx, id)
}

type mockOrderRepository struct {
	FindByIDForUpdateFunc func(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error)
	UpdateStatusFunc      func(ctx context.Context, tx *sql.Tx, order *domain.Order) error
}

func (m *mockOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error) {
	return m.FindByIDForUpdateFunc(ctx, tx, id)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	return m.UpdateStatusFunc(ctx, tx, order)
}

type mockOrderItemReader struct {
	FindByOrderIDFunc func(ctx context.Context, tx *sql.Tx, orderID int64) ([]domain.OrderItem, error)
}

func (m *mockOrderItemReader) FindByOrderID(ctx context.Context, tx *sql.Tx, orderID int64) ([]domain.OrderItem, error) {
	return m.FindByOrderIDFunc(ctx, tx, orderID)
}

type recordingHistory struct {
	entries []domain.OrderStatusHistory
	err     error
}

func (m *recordingHistory) Insert(ctx context.Context, tx *sql.Tx, entry domain.OrderStatusHistory) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.entries = append(m.entries, entry)
	return int64(len(m.entries)), nil
}

type recordingReleaser struct {
	released [][]domain.ReservationItem
	err      error
}

func (m *recordingReleaser) Release(ctx context.Context, tx *sql.Tx, items []domain.ReservationItem) error {
	if m.err != nil {
		return m.err
	}
	m.released = append(m.released, items)
	return nil
}
