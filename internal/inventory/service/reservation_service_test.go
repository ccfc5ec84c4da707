package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

// fakeVariantRepository keeps variants in memory. Row locks are not modelled;
// locking is covered against MySQL in the integration tests.
type fakeVariantRepository struct {
	mu       sync.Mutex
	variants map[int64]*domain.ProductVariant
	lockLog  []int64
}

func newFakeVariantRepository(variants ...domain.ProductVariant) *fakeVariantRepository {
	repo := &fakeVariantRepository{variants: make(map[int64]*domain.ProductVariant)}
	for i := range variants {
		v := variants[i]
		repo.variants[v.ID] = &v
	}
	return repo
}

func (f *fakeVariantRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.ProductVariant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lockLog = append(f.lockLog, id)
	v, ok := f.variants[id]
	if !ok {
		return nil, errors.NewEntityNotFoundError("variant", id)
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVariantRepository) IncrementReserved(ctx context.Context, tx *sql.Tx, id int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.variants[id].ReservedQuantity += quantity
	return nil
}

func (f *fakeVariantRepository) DecrementReserved(ctx context.Context, tx *sql.Tx, id int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.variants[id]
	v.ReservedQuantity -= quantity
	if v.ReservedQuantity < 0 {
		v.ReservedQuantity = 0
	}
	return nil
}

func (f *fakeVariantRepository) IncrementStock(ctx context.Context, tx *sql.Tx, id int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.variants[id].StockQuantity += quantity
	return nil
}

func (f *fakeVariantRepository) get(id int64) domain.ProductVariant {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.variants[id]
}

func variant(id int64, name string, stock, reserved int) domain.ProductVariant {
	return domain.ProductVariant{ID: id, ProductName: name, StockQuantity: stock, ReservedQuantity: reserved, IsActive: true}
}

func TestReserve_ExhaustsThenRejects(t *testing.T) {
	repo := newFakeVariantRepository(variant(1, "Desk Lamp", 10, 0))
	svc := NewReservationService(repo, zap.NewNop())

	reserved, err := svc.Reserve(context.Background(), nil, []domain.ReservationItem{{VariantID: 1, Quantity: 10}})
	require.NoError(t, err)
	require.Len(t, reserved, 1)
	assert.Equal(t, 10, reserved[0].ReservedQuantity)
	assert.Equal(t, 0, repo.get(1).AvailableQuantity())

	_, err = svc.Reserve(context.Background(), nil, []domain.ReservationItem{{VariantID: 1, Quantity: 1}})
	sue, ok := errors.IsStockUnavailableError(err)
	require.True(t, ok)
	assert.Equal(t, "Desk Lamp", sue.ProductName)
	assert.Equal(t, 0, sue.Available)
	assert.Equal(t, 1, sue.Requested)
	assert.Equal(t, 10, repo.get(1).ReservedQuantity)
}

func TestReserve_StopsAtFirstShortItem(t *testing.T) {
	repo := newFakeVariantRepository(
		variant(1, "Chair", 5, 0),
		variant(2, "Table", 1, 0),
		variant(3, "Rug", 5, 0),
	)
	svc := NewReservationService(repo, zap.NewNop())

	_, err := svc.Reserve(context.Background(), nil, []domain.ReservationItem{
		{VariantID: 3, Quantity: 1},
		{VariantID: 2, Quantity: 2},
		{VariantID: 1, Quantity: 1},
	})

	sue, ok := errors.IsStockUnavailableError(err)
	require.True(t, ok)
	assert.Equal(t, int64(2), sue.VariantID)
	// variant 3 is never reached because items are processed in id order
	assert.Equal(t, []int64{1, 2}, repo.lockLog)
	assert.Equal(t, 0, repo.get(3).ReservedQuantity)
}

func TestReserve_LocksInAscendingOrder(t *testing.T) {
	repo := newFakeVariantRepository(variant(7, "A", 5, 0), variant(3, "B", 5, 0), variant(5, "C", 5, 0))
	svc := NewReservationService(repo, zap.NewNop())

	items := []domain.ReservationItem{{VariantID: 7, Quantity: 1}, {VariantID: 3, Quantity: 1}, {VariantID: 5, Quantity: 1}}
	_, err := svc.Reserve(context.Background(), nil, items)
	require.NoError(t, err)

	assert.Equal(t, []int64{3, 5, 7}, repo.lockLog)
	assert.Equal(t, int64(7), items[0].VariantID, "caller slice must not be reordered")
}

func TestReserve_MissingVariant(t *testing.T) {
	svc := NewReservationService(newFakeVariantRepository(), zap.NewNop())

	_, err := svc.Reserve(context.Background(), nil, []domain.ReservationItem{{VariantID: 99, Quantity: 1}})

	nfe, ok := errors.IsNotFoundError(err)
	require.True(t, ok)
	assert.Equal(t, "variant", nfe.Kind)
	assert.Equal(t, int64(99), nfe.ID)
}

func TestReserve_InactiveVariantHasNoAvailability(t *testing.T) {
	v := variant(1, "Retired Mug", 10, 0)
	v.IsActive = false
	svc := NewReservationService(newFakeVariantRepository(v), zap.NewNop())

	_, err := svc.Reserve(context.Background(), nil, []domain.ReservationItem{{VariantID: 1, Quantity: 1}})

	sue, ok := errors.IsStockUnavailableError(err)
	require.True(t, ok)
	assert.Equal(t, 0, sue.Available)
}

func TestReserve_RejectsNonPositiveQuantity(t *testing.T) {
	for _, qty := range []int{0, -3} {
		repo := newFakeVariantRepository(variant(1, "Mug", 10, 4), variant(2, "Lamp", 10, 0))
		svc := NewReservationService(repo, zap.NewNop())

		_, err := svc.Reserve(context.Background(), nil, []domain.ReservationItem{
			{VariantID: 1, Quantity: 2},
			{VariantID: 2, Quantity: qty},
		})

		bre, ok := errors.IsBusinessRuleError(err)
		require.True(t, ok, "quantity %d: expected BusinessRuleError, got %v", qty, err)
		assert.Equal(t, RuleInvalidQuantity, bre.Code)
		assert.Empty(t, repo.lockLog)
		assert.Equal(t, 4, repo.get(1).ReservedQuantity)
	}
}

func TestRelease_ClampsAtZeroAndWarns(t *testing.T) {
	repo := newFakeVariantRepository(variant(1, "Lamp", 10, 3))
	core, logs := observer.New(zap.WarnLevel)
	svc := NewReservationService(repo, zap.New(core))

	items := []domain.ReservationItem{{VariantID: 1, Quantity: 3}}
	require.NoError(t, svc.Release(context.Background(), nil, items))
	require.NoError(t, svc.Release(context.Background(), nil, items))

	assert.Equal(t, 0, repo.get(1).ReservedQuantity)
	assert.Equal(t, 1, logs.FilterMessage("release exceeds reserved quantity, clamping at zero").Len())
}

func TestRestock_IncrementsStock(t *testing.T) {
	repo := newFakeVariantRepository(variant(1, "Lamp", 4, 0), variant(2, "Bulb", 0, 0))
	svc := NewReservationService(repo, zap.NewNop())

	err := svc.Restock(context.Background(), nil, []domain.ReservationItem{{VariantID: 2, Quantity: 5}, {VariantID: 1, Quantity: 1}})
	require.NoError(t, err)

	assert.Equal(t, 5, repo.get(1).StockQuantity)
	assert.Equal(t, 5, repo.get(2).StockQuantity)
}
