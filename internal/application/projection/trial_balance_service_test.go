package projection

import (
	"context"
	"testing"

	domainprojection "github.com/airp/ledger/internal/domain/projection"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTrialBalanceService_Compute(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	applyBucket := func(t *testing.T, balances *fakeBalanceRepo, accountID uuid.UUID, debit, credit string) {
		t.Helper()
		key := domainprojection.GLBalanceKey{
			TenantID: tenantID, AccountID: accountID,
			FiscalYear: 2025, FiscalPeriod: 3, Currency: "AED",
		}
		require.NoError(t, balances.ApplyLine(ctx, key, uuid.New(), dec(debit), dec(credit), expenseAccount.NormalSide))
	}

	t.Run("balanced period", func(t *testing.T) {
		balances := newFakeBalanceRepo()
		applyBucket(t, balances, uuid.New(), "525", "0")
		applyBucket(t, balances, uuid.New(), "0", "525")
		service := NewTrialBalanceService(balances, zap.NewNop())

		tb, err := service.Compute(ctx, tenantID, 2025, 3)
		require.NoError(t, err)
		assert.Equal(t, domainprojection.TrialBalanceStatusBalanced, tb.Status)
		assert.True(t, tb.TotalDebits.Equal(dec("525")))
		assert.True(t, tb.TotalCredits.Equal(dec("525")))
		assert.Equal(t, int64(2), tb.AccountCount)
		assert.Len(t, tb.Rows, 2)
		assert.False(t, tb.CheckedAt.IsZero())
	})

	t.Run("unbalanced period is reported, not repaired", func(t *testing.T) {
		balances := newFakeBalanceRepo()
		applyBucket(t, balances, uuid.New(), "1000", "0")
		applyBucket(t, balances, uuid.New(), "0", "400")
		service := NewTrialBalanceService(balances, zap.NewNop())

		tb, err := service.Compute(ctx, tenantID, 2025, 3)
		require.NoError(t, err)
		assert.Equal(t, domainprojection.TrialBalanceStatusUnbalanced, tb.Status)
		assert.True(t, tb.NetBalance.Equal(dec("600")))
	})

	t.Run("empty period balances trivially", func(t *testing.T) {
		service := NewTrialBalanceService(newFakeBalanceRepo(), zap.NewNop())

		tb, err := service.Compute(ctx, tenantID, 2025, 1)
		require.NoError(t, err)
		assert.Equal(t, domainprojection.TrialBalanceStatusBalanced, tb.Status)
		assert.Equal(t, int64(0), tb.AccountCount)
		assert.Empty(t, tb.Rows)
	})
}
