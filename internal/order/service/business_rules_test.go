package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

func existingCustomers() *mockCustomerReader {
	return &mockCustomerReader{
		FindByIDInTxFunc: func(ctx context.Context, tx *sql.Tx, id int64) (*domain.Customer, error) {
			return &domain.Customer{ID: id, IsActive: true}, nil
		},
	}
}

func existingCompanies() *mockCompanyReader {
	return &mockCompanyReader{
		FindByIDInTxFunc: func(ctx context.Context, tx *sql.Tx, id int64) (*domain.Company, error) {
			return &domain.Company{ID: id, CreditLimit: decimal.RequireFromString("2000"), PaymentTermDays: 45}, nil
		},
	}
}

func newTestRuleValidator(customers CustomerReader, companies CompanyReader) *BusinessRuleValidator {
	return NewBusinessRuleValidator(customers, companies, 10, decimal.RequireFromString("1000"))
}

func linesOf(n int, price string) []domain.OrderLine {
	lines := make([]domain.OrderLine, n)
	for i := range lines {
		lines[i] = domain.OrderLine{VariantID: int64(i + 1), Quantity: 1, UnitPrice: decimal.RequireFromString(price)}
	}
	return lines
}

func requireRuleCode(t *testing.T, err error, code string) {
	t.Helper()
	bre, ok := apperrors.IsBusinessRuleError(err)
	require.True(t, ok, "expected BusinessRuleError, got %v", err)
	assert.Equal(t, code, bre.Code)
}

func TestValidateB2C_AcceptsUpToCap(t *testing.T) {
	err := newTestRuleValidator(existingCustomers(), existingCompanies()).
		ValidateB2C(context.Background(), nil, 1, linesOf(10, "5.00"))

	assert.NoError(t, err)
}

func TestValidateB2C_MaxItemsExceeded(t *testing.T) {
	lookups := 0
	customers := &mockCustomerReader{
		FindByIDInTxFunc: func(ctx context.Context, tx *sql.Tx, id int64) (*domain.Customer, error) {
			lookups++
			return &domain.Customer{ID: id}, nil
		},
	}

	err := newTestRuleValidator(customers, existingCompanies()).
		ValidateB2C(context.Background(), nil, 1, linesOf(11, "5.00"))

	requireRuleCode(t, err, RuleMaxItemsExceeded)
	assert.Zero(t, lookups)
}

func TestValidateB2C_UnknownCustomer(t *testing.T) {
	customers := &mockCustomerReader{
		FindByIDInTxFunc: func(ctx context.Context, tx *sql.Tx, id int64) (*domain.Customer, error) {
			return nil, apperrors.NewEntityNotFoundError("customer", id)
		},
	}

	err := newTestRuleValidator(customers, existingCompanies()).
		ValidateB2C(context.Background(), nil, 404, linesOf(1, "5.00"))

	requireRuleCode(t, err, RuleCustomerNotFound)
}

func TestValidateB2C_EmptyOrder(t *testing.T) {
	err := newTestRuleValidator(existingCustomers(), existingCompanies()).
		ValidateB2C(context.Background(), nil, 1, nil)

	requireRuleCode(t, err, RuleEmptyOrder)
}

func TestValidateB2C_LookupFailureIsNotARuleViolation(t *testing.T) {
	customers := &mockCustomerReader{
		FindByIDInTxFunc: func(ctx context.Context, tx *sql.Tx, id int64) (*domain.Customer, error) {
			return nil, errors.New("connection refused")
		},
	}

	err := newTestRuleValidator(customers, existingCompanies()).
		ValidateB2C(context.Background(), nil, 1, linesOf(1, "5.00"))

	require.Error(t, err)
	_, ok := apperrors.IsBusinessRuleError(err)
	assert.False(t, ok)
}

func TestValidateB2B_ReturnsCompany(t *testing.T) {
	company, err := newTestRuleValidator(existingCustomers(), existingCompanies()).
		ValidateB2B(context.Background(), nil, 1, 3, []domain.OrderLine{
			{VariantID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("500.00")},
		})

	require.NoError(t, err)
	assert.Equal(t, int64(3), company.ID)
	assert.Equal(t, 45, company.PaymentTermDays)
}

func TestValidateB2B_BelowMinimumTotal(t *testing.T) {
	_, err := newTestRuleValidator(existingCustomers(), existingCompanies()).
		ValidateB2B(context.Background(), nil, 1, 3, []domain.OrderLine{
			{VariantID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("333.33")},
		})

	requireRuleCode(t, err, RuleMinOrderTotalNotMet)
}

func TestValidateB2B_ItemCountIsNotCapped(t *testing.T) {
	_, err := newTestRuleValidator(existingCustomers(), existingCompanies()).
		ValidateB2B(context.Background(), nil, 1, 3, linesOf(25, "50.00"))

	assert.NoError(t, err)
}

func TestValidateB2B_UnknownCompany(t *testing.T) {
	companies := &mockCompanyReader{
		FindByIDInTxFunc: func(ctx context.Context, tx *sql.Tx, id int64) (*domain.Company, error) {
			return nil, apperrors.NewEntityNotFoundError("company", id)
		},
	}

	_, err := newTestRuleValidator(existingCustomers(), companies).
		ValidateB2B(context.Background(), nil, 1, 9, linesOf(1, "1500.00"))

	requireRuleCode(t, err, RuleCompanyNotFound)
}

func TestValidateB2B_IgnoresCreditLimit(t *testing.T) {
	companies := &mockCompanyReader{
		FindByIDInTxFunc: func(ctx context.Context, tx *sql.Tx, id int64) (*domain.Company, error) {
			return &domain.Company{ID: id, CreditLimit: decimal.RequireFromString("100"), CurrentBalance: decimal.RequireFromString("100")}, nil
		},
	}

	_, err := newTestRuleValidator(existingCustomers(), companies).
		ValidateB2B(context.Background(), nil, 1, 9, linesOf(1, "1500.00"))

	assert.NoError(t, err)
}

func TestValidateB2B_UnknownCustomer(t *testing.T) {
	customers := &mockCustomerReader{
		FindByIDInTxFunc: func(ctx context.Context, tx *sql.Tx, id int64) (*domain.Customer, error) {
			return nil, apperrors.NewEntityNotFoundError("customer", id)
		},
	}

	_, err := newTestRuleValidator(customers, existingCompanies()).
		ValidateB2B(context.Background(), nil, 404, 3, linesOf(1, "1500.00"))

	requireRuleCode(t, err, RuleCustomerNotFound)
}

func TestValidator_ReadsThroughCallerTransaction(t *testing.T) {
	tx := &sql.Tx{}
	var seen []*sql.Tx
	customers := &mockCustomerReader{
		FindByIDInTxFunc: func(ctx context.Context, got *sql.Tx, id int64) (*domain.Customer, error) {
			seen = append(seen, got)
			return &domain.Customer{ID: id}, nil
		},
	}
	companies := &mockCompanyReader{
		FindByIDInTxFunc: func(ctx context.Context, got *sql.Tx, id int64) (*domain.Company, error) {
			seen = append(seen, got)
			return &domain.Company{ID: id}, nil
		},
	}
	v := newTestRuleValidator(customers, companies)

	require.NoError(t, v.ValidateB2C(context.Background(), tx, 1, linesOf(1, "5.00")))
	_, err := v.ValidateB2B(context.Background(), tx, 1, 3, linesOf(1, "1500.00"))
	require.NoError(t, err)

	require.Len(t, seen, 3)
	for _, got := range seen {
		assert.Same(t, tx, got)
	}
}
