package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/airp/ledger/internal/domain/masterdata"
	"github.com/airp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceEpsilon is the tolerance for the double-entry balance check,
// in currency units. Sums are fixed-point decimal throughout; the epsilon
// exists for entries built from rounded per-line amounts, not for float drift.
var BalanceEpsilon = decimal.RequireFromString("0.01")

// EntryValidator enforces balance and control-account invariants on a
// proposed entry before it becomes an event. It never writes state.
type EntryValidator struct {
	accounts masterdata.AccountLookup
}

// NewEntryValidator creates a validator backed by a chart-of-accounts lookup
func NewEntryValidator(accounts masterdata.AccountLookup) *EntryValidator {
	return &EntryValidator{accounts: accounts}
}

// Validate returns nil when the entry is ready for appending, or a
// structured rejection. Checks run in order: line shape, balance,
// account resolution, control-account dimensions.
func (v *EntryValidator) Validate(ctx context.Context, tenantID uuid.UUID, entry *JournalEntryPayload) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	for i := range entry.Lines {
		if !entry.Lines[i].IsOneSided() {
			return NewValidationError(CodeInvalidLine,
				fmt.Sprintf("line %d must have exactly one of debit or credit non-zero", entry.Lines[i].LineNumber))
		}
	}

	debits := entry.SumDebits()
	credits := entry.SumCredits()
	if debits.Sub(credits).Abs().GreaterThan(BalanceEpsilon) {
		return &UnbalancedEntryError{TotalDebits: debits, TotalCredits: credits}
	}

	for i := range entry.Lines {
		line := &entry.Lines[i]
		account, err := v.accounts.FindByCode(ctx, tenantID, line.AccountCode)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return &UnresolvableAccountError{AccountCode: line.AccountCode, LineNumber: line.LineNumber}
			}
			return fmt.Errorf("failed to resolve account %s: %w", line.AccountCode, err)
		}
		if !account.IsActive() {
			return NewValidationError(shared.ErrAccountInactive.Code,
				fmt.Sprintf("account %s is not active", line.AccountCode))
		}

		switch account.ControlType {
		case masterdata.ControlTypeAR:
			if line.CustomerID == nil {
				return &MissingSubledgerDimensionError{
					AccountCode: account.Code,
					AccountName: account.Name,
					Dimension:   "customerId",
					LineNumber:  line.LineNumber,
				}
			}
		case masterdata.ControlTypeAP:
			if line.VendorID == nil {
				return &MissingSubledgerDimensionError{
					AccountCode: account.Code,
					AccountName: account.Name,
					Dimension:   "vendorId",
					LineNumber:  line.LineNumber,
				}
			}
		}
	}

	return nil
}
