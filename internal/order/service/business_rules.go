package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

const (
	RuleEmptyOrder          = "EMPTY_ORDER"
	RuleEmptyCart           = "EMPTY_CART"
	RuleMaxItemsExceeded    = "MAX_ITEMS_EXCEEDED"
	RuleCustomerNotFound    = "CUSTOMER_NOT_FOUND"
	RuleCompanyNotFound     = "COMPANY_NOT_FOUND"
	RuleMinOrderTotalNotMet = "MIN_ORDER_TOTAL_NOT_MET"
)

type CustomerReader interface {
	FindByIDInTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.Customer, error)
}

type CompanyReader interface {
	FindByIDInTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.Company, error)
}

// BusinessRuleValidator only reads, and only through the caller's
// transaction. Each failure is a BusinessRuleError with a stable code.
type BusinessRuleValidator struct {
	customers   CustomerReader
	companies   CompanyReader
	maxB2CItems int
	minB2BTotal decimal.Decimal
}

func NewBusinessRuleValidator(customers CustomerReader, companies CompanyReader, maxB2CItems int, minB2BTotal decimal.Decimal) *BusinessRuleValidator {
	return &BusinessRuleValidator{
		customers:   customers,
		companies:   companies,
		maxB2CItems: maxB2CItems,
		minB2BTotal: minB2BTotal,
	}
}

func (v *BusinessRuleValidator) ValidateB2C(ctx context.Context, tx *sql.Tx, customerID int64, lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return errors.NewBusinessRuleError(RuleEmptyOrder, "order has no items")
	}

	if len(lines) > v.maxB2CItems {
		return errors.NewBusinessRuleError(RuleMaxItemsExceeded,
			fmt.Sprintf("order has %d items, at most %d are allowed", len(lines), v.maxB2CItems))
	}

	return v.requireCustomer(ctx, tx, customerID)
}

// ValidateB2B returns the resolved company so callers can read its payment
// terms without a second lookup. The credit limit is not checked here.
func (v *BusinessRuleValidator) ValidateB2B(ctx context.Context, tx *sql.Tx, customerID, companyID int64, lines []domain.OrderLine) (*domain.Company, error) {
	if len(lines) == 0 {
		return nil, errors.NewBusinessRuleError(RuleEmptyOrder, "order has no items")
	}

	if err := v.requireCustomer(ctx, tx, customerID); err != nil {
		return nil, err
	}

	company, err := v.companies.FindByIDInTx(ctx, tx, companyID)
	if err != nil {
		if _, ok := errors.IsNotFoundError(err); ok {
			return nil, errors.NewBusinessRuleError(RuleCompanyNotFound, fmt.Sprintf("company %d does not exist", companyID))
		}
		return nil, err
	}

	total := domain.LinesSubtotal(lines)
	if total.LessThan(v.minB2BTotal) {
		return nil, errors.NewBusinessRuleError(RuleMinOrderTotalNotMet,
			fmt.Sprintf("order total %s is below the minimum of %s", total.StringFixed(2), v.minB2BTotal.StringFixed(2)))
	}

	return company, nil
}

func (v *BusinessRuleValidator) requireCustomer(ctx context.Context, tx *sql.Tx, customerID int64) error {
	if _, err := v.customers.FindByIDInTx(ctx, tx, customerID); err != nil {
		if _, ok := errors.IsNotFoundError(err); ok {
			return errors.NewBusinessRuleError(RuleCustomerNotFound, fmt.Sprintf("customer %d does not exist", customerID))
		}
		return err
	}
	return nil
}
