package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation error codes surfaced to callers
const (
	CodeUnbalancedEntry            = "UNBALANCED_ENTRY"
	CodeMissingSubledgerDimension  = "MISSING_SUBLEDGER_DIMENSION"
	CodeUnresolvableAccount        = "UNRESOLVABLE_ACCOUNT"
	CodeInvalidLine                = "INVALID_LINE"
)

// ValidationError is a structured rejection of a proposed journal entry.
// It is returned synchronously, before any event is written.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with a stable code
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// UnbalancedEntryError carries both sums so the caller can correct the input
type UnbalancedEntryError struct {
	TotalDebits  decimal.Decimal `json:"totalDebits"`
	TotalCredits decimal.Decimal `json:"totalCredits"`
}

// Error implements the error interface
func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("journal entry is not balanced: debits %s, credits %s",
		e.TotalDebits.StringFixed(4), e.TotalCredits.StringFixed(4))
}

// ValidationCode returns the stable error code
func (e *UnbalancedEntryError) ValidationCode() string { return CodeUnbalancedEntry }

// MissingSubledgerDimensionError names the control account and the dimension
// that must be present on the line
type MissingSubledgerDimensionError struct {
	AccountCode string `json:"accountCode"`
	AccountName string `json:"accountName"`
	Dimension   string `json:"dimension"` // "customerId" or "vendorId"
	LineNumber  int    `json:"lineNumber"`
}

// Error implements the error interface
func (e *MissingSubledgerDimensionError) Error() string {
	return fmt.Sprintf("account %s (%s) requires %s on line %d: direct posting to a control account without sub-ledger attribution is not allowed",
		e.AccountCode, e.AccountName, e.Dimension, e.LineNumber)
}

// ValidationCode returns the stable error code
func (e *MissingSubledgerDimensionError) ValidationCode() string {
	return CodeMissingSubledgerDimension
}

// UnresolvableAccountError names the account code that could not be resolved
type UnresolvableAccountError struct {
	AccountCode string `json:"accountCode"`
	LineNumber  int    `json:"lineNumber"`
}

// Error implements the error interface
func (e *UnresolvableAccountError) Error() string {
	return fmt.Sprintf("account code %q on line %d cannot be resolved", e.AccountCode, e.LineNumber)
}

// ValidationCode returns the stable error code
func (e *UnresolvableAccountError) ValidationCode() string { return CodeUnresolvableAccount }
