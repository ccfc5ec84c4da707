package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeNotFound               = "NOT_FOUND"
	CodeBusinessRule           = "BUSINESS_RULE_VIOLATION"
	CodeStockUnavailable       = "STOCK_UNAVAILABLE"
	CodePriceChanged           = "PRICE_CHANGED"
	CodeInvalidTransition      = "INVALID_STATE_TRANSITION"
	CodeCreditLimitExceeded    = "CREDIT_LIMIT_EXCEEDED"
	CodeInvalidTransactionType = "INVALID_TRANSACTION_TYPE"
	CodeRetryable              = "RETRYABLE"
	CodeInternal               = "INTERNAL_ERROR"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
	Kind    string
	ID      int64
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

// NewEntityNotFoundError builds a NotFoundError that carries the entity kind and id.
func NewEntityNotFoundError(kind string, id int64) *NotFoundError {
	return &NotFoundError{
		Message: fmt.Sprintf("%s with id %d not found", kind, id),
		Kind:    kind,
		ID:      id,
	}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if stderrors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

// BusinessRuleError is a policy failure. Code is stable and safe for clients to branch on.
type BusinessRuleError struct {
	Code    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewBusinessRuleError(code, message string) *BusinessRuleError {
	return &BusinessRuleError{Code: code, Message: message}
}

func IsBusinessRuleError(err error) (*BusinessRuleError, bool) {
	var bre *BusinessRuleError
	if stderrors.As(err, &bre) {
		return bre, true
	}
	return nil, false
}

type StockUnavailableError struct {
	VariantID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *StockUnavailableError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", e.ProductName, e.Available, e.Requested)
}

func NewStockUnavailableError(variantID int64, productName string, available, requested int) *StockUnavailableError {
	return &StockUnavailableError{
		VariantID:   variantID,
		ProductName: productName,
		Available:   available,
		Requested:   requested,
	}
}

func IsStockUnavailableError(err error) (*StockUnavailableError, bool) {
	var sue *StockUnavailableError
	if stderrors.As(err, &sue) {
		return sue, true
	}
	return nil, false
}

type PriceMismatch struct {
	VariantID     int64           `json:"variantId"`
	ProductName   string          `json:"productName"`
	ExpectedPrice decimal.Decimal `json:"expectedPrice"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
}

// PriceChangedError lists every mismatch found, never only the first.
type PriceChangedError struct {
	Mismatches []PriceMismatch
}

func (e *PriceChangedError) Error() string {
	return fmt.Sprintf("prices changed for %d item(s)", len(e.Mismatches))
}

func NewPriceChangedError(mismatches []PriceMismatch) *PriceChangedError {
	return &PriceChangedError{Mismatches: mismatches}
}

func IsPriceChangedError(err error) (*PriceChangedError, bool) {
	var pce *PriceChangedError
	if stderrors.As(err, &pce) {
		return pce, true
	}
	return nil, false
}

type InvalidTransitionError struct {
	From   string
	To     string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s: %s", e.From, e.To, e.Reason)
}

func NewInvalidTransitionError(from, to, reason string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to, Reason: reason}
}

func IsInvalidTransitionError(err error) (*InvalidTransitionError, bool) {
	var ite *InvalidTransitionError
	if stderrors.As(err, &ite) {
		return ite, true
	}
	return nil, false
}

type CreditLimitExceededError struct {
	CompanyID      int64
	CreditLimit    decimal.Decimal
	CurrentBalance decimal.Decimal
	Requested      decimal.Decimal
}

func (e *CreditLimitExceededError) Error() string {
	return fmt.Sprintf("credit limit exceeded for company %d: limit %s, balance %s, requested %s",
		e.CompanyID, e.CreditLimit.StringFixed(2), e.CurrentBalance.StringFixed(2), e.Requested.StringFixed(2))
}

func NewCreditLimitExceededError(companyID int64, limit, balance, requested decimal.Decimal) *CreditLimitExceededError {
	return &CreditLimitExceededError{
		CompanyID:      companyID,
		CreditLimit:    limit,
		CurrentBalance: balance,
		Requested:      requested,
	}
}

func IsCreditLimitExceededError(err error) (*CreditLimitExceededError, bool) {
	var cle *CreditLimitExceededError
	if stderrors.As(err, &cle) {
		return cle, true
	}
	return nil, false
}

type InvalidTransactionTypeError struct {
	Kind string
}

func (e *InvalidTransactionTypeError) Error() string {
	return fmt.Sprintf("invalid transaction type %q", e.Kind)
}

func NewInvalidTransactionTypeError(kind string) *InvalidTransactionTypeError {
	return &InvalidTransactionTypeError{Kind: kind}
}

func IsInvalidTransactionTypeError(err error) (*InvalidTransactionTypeError, bool) {
	var ite *InvalidTransactionTypeError
	if stderrors.As(err, &ite) {
		return ite, true
	}
	return nil, false
}

// RetryableError reports lock contention (deadlock or lock wait timeout) that
// outlived the retry budget. The client may resubmit the same request.
type RetryableError struct {
	Message string
	Cause   error
}

func (e *RetryableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *RetryableError) Unwrap() error {
	return e.Cause
}

func NewRetryableError(message string, cause error) *RetryableError {
	return &RetryableError{Message: message, Cause: cause}
}

func IsRetryableError(err error) (*RetryableError, bool) {
	var re *RetryableError
	if stderrors.As(err, &re) {
		return re, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

// IsDomainError reports whether err is one of the typed failures above that
// must reach the caller as-is instead of being wrapped as an InternalError.
func IsDomainError(err error) bool {
	if _, ok := IsValidationError(err); ok {
		return true
	}
	if _, ok := IsNotFoundError(err); ok {
		return true
	}
	if _, ok := IsBusinessRuleError(err); ok {
		return true
	}
	if _, ok := IsStockUnavailableError(err); ok {
		return true
	}
	if _, ok := IsPriceChangedError(err); ok {
		return true
	}
	if _, ok := IsInvalidTransitionError(err); ok {
		return true
	}
	if _, ok := IsCreditLimitExceededError(err); ok {
		return true
	}
	if _, ok := IsInvalidTransactionTypeError(err); ok {
		return true
	}
	if _, ok := IsRetryableError(err); ok {
		return true
	}
	return false
}

// CodeOf returns the stable code for err. Business rule failures report their
// own rule code; unknown errors report CodeInternal.
func CodeOf(err error) string {
	if bre, ok := IsBusinessRuleError(err); ok {
		return bre.Code
	}
	if _, ok := IsValidationError(err); ok {
		return CodeValidation
	}
	if _, ok := IsNotFoundError(err); ok {
		return CodeNotFound
	}
	if _, ok := IsStockUnavailableError(err); ok {
		return CodeStockUnavailable
	}
	if _, ok := IsPriceChangedError(err); ok {
		return CodePriceChanged
	}
	if _, ok := IsInvalidTransitionError(err); ok {
		return CodeInvalidTransition
	}
	if _, ok := IsCreditLimitExceededError(err); ok {
		return CodeCreditLimitExceeded
	}
	if _, ok := IsInvalidTransactionTypeError(err); ok {
		return CodeInvalidTransactionType
	}
	if _, ok := IsRetryableError(err); ok {
		return CodeRetryable
	}
	return CodeInternal
}
