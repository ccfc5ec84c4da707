package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Company struct {
	ID              int64
	Name            string
	CreditLimit     decimal.Decimal
	CurrentBalance  decimal.Decimal
	PaymentTermDays int
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (c Company) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.CurrentBalance)
}

type CreditTransactionKind string

const (
	CreditTransactionDebit  CreditTransactionKind = "DEBIT"
	CreditTransactionCredit CreditTransactionKind = "CREDIT"
)

func (k CreditTransactionKind) Valid() bool {
	return k == CreditTransactionDebit || k == CreditTransactionCredit
}

type CreditTransaction struct {
	ID           int64
	CompanyID    int64
	Kind         CreditTransactionKind
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	Description  string
	Forced       bool
	CreatedAt    time.Time
}

// BalanceAdjustment is a request to move a company's balance. DEBIT consumes
// credit, CREDIT releases it. Forced lets a DEBIT exceed the credit limit.
type BalanceAdjustment struct {
	CompanyID   int64
	Amount      decimal.Decimal
	Kind        CreditTransactionKind
	Description string
	Forced      bool
}
