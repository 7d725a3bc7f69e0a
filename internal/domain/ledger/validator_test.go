package ledger

import (
	"context"
	"testing"

	"github.com/airp/ledger/internal/domain/masterdata"
	"github.com/airp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAccountLookup resolves account codes from an in-memory chart
type fakeAccountLookup struct {
	accounts map[string]*masterdata.Account
}

func (f *fakeAccountLookup) FindByCode(_ context.Context, _ uuid.UUID, code string) (*masterdata.Account, error) {
	account, ok := f.accounts[code]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return account, nil
}

func testChart() *fakeAccountLookup {
	return &fakeAccountLookup{accounts: map[string]*masterdata.Account{
		"5100": {ID: uuid.New(), Code: "5100", Name: "Office Expenses", Type: masterdata.AccountTypeExpense,
			NormalSide: masterdata.NormalSideDebit, Status: masterdata.AccountStatusActive},
		"2100": {ID: uuid.New(), Code: "2100", Name: "Accounts Payable", Type: masterdata.AccountTypeLiability,
			NormalSide: masterdata.NormalSideCredit, ControlType: masterdata.ControlTypeAP, Status: masterdata.AccountStatusActive},
		"1200": {ID: uuid.New(), Code: "1200", Name: "Accounts Receivable", Type: masterdata.AccountTypeAsset,
			NormalSide: masterdata.NormalSideDebit, ControlType: masterdata.ControlTypeAR, Status: masterdata.AccountStatusActive},
		"9999": {ID: uuid.New(), Code: "9999", Name: "Suspense", Type: masterdata.AccountTypeExpense,
			NormalSide: masterdata.NormalSideDebit, Status: masterdata.AccountStatusInactive},
	}}
}

func balancedEntry(vendorID *uuid.UUID) *JournalEntryPayload {
	return &JournalEntryPayload{
		EntryNumber: "JE-1",
		EntryDate:   "2025-03-15",
		PostingDate: "2025-03-15",
		EntryType:   EntryTypeManual,
		Currency:    "AED",
		Lines: []JournalEntryLine{
			{LineNumber: 1, AccountCode: "5100", DebitAmount: dec("525"), CreditAmount: decimal.Zero},
			{LineNumber: 2, AccountCode: "2100", DebitAmount: decimal.Zero, CreditAmount: dec("525"), VendorID: vendorID},
		},
	}
}

func TestEntryValidator_Validate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	validator := NewEntryValidator(testChart())

	t.Run("balanced entry with vendor dimension passes", func(t *testing.T) {
		vendorID := uuid.New()
		assert.NoError(t, validator.Validate(ctx, tenantID, balancedEntry(&vendorID)))
	})

	t.Run("unbalanced entry is rejected with both sums", func(t *testing.T) {
		vendorID := uuid.New()
		entry := balancedEntry(&vendorID)
		entry.Lines[1].CreditAmount = dec("500")

		err := validator.Validate(ctx, tenantID, entry)
		var ube *UnbalancedEntryError
		require.ErrorAs(t, err, &ube)
		assert.True(t, ube.TotalDebits.Equal(dec("525")))
		assert.True(t, ube.TotalCredits.Equal(dec("500")))
		assert.Equal(t, CodeUnbalancedEntry, ube.ValidationCode())
	})

	t.Run("drift within epsilon is tolerated", func(t *testing.T) {
		vendorID := uuid.New()
		entry := balancedEntry(&vendorID)
		entry.Lines[1].CreditAmount = dec("524.99")
		assert.NoError(t, validator.Validate(ctx, tenantID, entry))
	})

	t.Run("line with both sides set is rejected", func(t *testing.T) {
		vendorID := uuid.New()
		entry := balancedEntry(&vendorID)
		entry.Lines[0].CreditAmount = entry.Lines[0].DebitAmount

		err := validator.Validate(ctx, tenantID, entry)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, CodeInvalidLine, ve.Code)
	})

	t.Run("unresolvable account code", func(t *testing.T) {
		vendorID := uuid.New()
		entry := balancedEntry(&vendorID)
		entry.Lines[0].AccountCode = "0000"

		err := validator.Validate(ctx, tenantID, entry)
		var uae *UnresolvableAccountError
		require.ErrorAs(t, err, &uae)
		assert.Equal(t, "0000", uae.AccountCode)
		assert.Equal(t, 1, uae.LineNumber)
	})

	t.Run("inactive account", func(t *testing.T) {
		vendorID := uuid.New()
		entry := balancedEntry(&vendorID)
		entry.Lines[0].AccountCode = "9999"

		err := validator.Validate(ctx, tenantID, entry)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "ACCOUNT_INACTIVE", ve.Code)
	})

	t.Run("AP control account without vendor dimension", func(t *testing.T) {
		entry := balancedEntry(nil)

		err := validator.Validate(ctx, tenantID, entry)
		var mde *MissingSubledgerDimensionError
		require.ErrorAs(t, err, &mde)
		assert.Equal(t, "2100", mde.AccountCode)
		assert.Equal(t, "vendorId", mde.Dimension)
		assert.Equal(t, 2, mde.LineNumber)
	})

	t.Run("AR control account without customer dimension", func(t *testing.T) {
		entry := &JournalEntryPayload{
			EntryNumber: "JE-2",
			EntryDate:   "2025-03-15",
			PostingDate: "2025-03-15",
			Currency:    "AED",
			Lines: []JournalEntryLine{
				{LineNumber: 1, AccountCode: "1200", DebitAmount: dec("100"), CreditAmount: decimal.Zero},
				{LineNumber: 2, AccountCode: "5100", DebitAmount: decimal.Zero, CreditAmount: dec("100")},
			},
		}

		err := validator.Validate(ctx, tenantID, entry)
		var mde *MissingSubledgerDimensionError
		require.ErrorAs(t, err, &mde)
		assert.Equal(t, "customerId", mde.Dimension)
	})

	t.Run("structural validation runs first", func(t *testing.T) {
		err := validator.Validate(ctx, tenantID, &JournalEntryPayload{Currency: "AED", PostingDate: "2025-03-15"})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "EMPTY_ENTRY", ve.Code)
	})
}
