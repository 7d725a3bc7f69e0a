package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiscalPeriodOf(t *testing.T) {
	t.Run("derives year and month", func(t *testing.T) {
		year, period, err := FiscalPeriodOf("2025-03-15")
		require.NoError(t, err)
		assert.Equal(t, 2025, year)
		assert.Equal(t, 3, period)
	})

	t.Run("december", func(t *testing.T) {
		year, period, err := FiscalPeriodOf("2024-12-31")
		require.NoError(t, err)
		assert.Equal(t, 2024, year)
		assert.Equal(t, 12, period)
	})

	t.Run("rejects non-wire format", func(t *testing.T) {
		_, _, err := FiscalPeriodOf("15/03/2025")
		assert.Error(t, err)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, _, err := FiscalPeriodOf("")
		assert.Error(t, err)
	})
}

func TestDateRoundTrip(t *testing.T) {
	parsed, err := ParseDate("2025-07-04")
	require.NoError(t, err)
	assert.Equal(t, "2025-07-04", FormatDate(parsed))
}
