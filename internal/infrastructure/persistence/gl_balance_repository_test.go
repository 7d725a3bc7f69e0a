package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/airp/ledger/internal/domain/masterdata"
	"github.com/airp/ledger/internal/domain/projection"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func balanceColumns() []string {
	return []string{
		"id", "tenant_id", "account_id", "fiscal_year", "fiscal_period", "currency",
		"debit_amount", "credit_amount", "balance", "last_event_id", "updated_at",
	}
}

func TestGormGLBalanceRepository_ApplyLine(t *testing.T) {
	ctx := context.Background()
	key := projection.GLBalanceKey{
		TenantID:     uuid.New(),
		AccountID:    uuid.New(),
		FiscalYear:   2025,
		FiscalPeriod: 3,
		Currency:     "AED",
	}

	t.Run("same event id is a no-op", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormGLBalanceRepository(db)

		eventID := uuid.New()
		bucketID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "gl_balances" .*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(balanceColumns()).AddRow(
				bucketID.String(), key.TenantID.String(), key.AccountID.String(), 2025, 3, "AED",
				"525", "0", "525", eventID.String(), time.Now().UTC(),
			))
		mock.ExpectCommit()

		err := repo.ApplyLine(ctx, key, eventID, decimal.RequireFromString("525"), decimal.Zero, masterdata.NormalSideDebit)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet(), "no update statement for an already-applied event")
	})

	t.Run("existing bucket accumulates under row lock", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormGLBalanceRepository(db)

		previousEvent := uuid.New()
		bucketID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "gl_balances" .*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(balanceColumns()).AddRow(
				bucketID.String(), key.TenantID.String(), key.AccountID.String(), 2025, 3, "AED",
				"100", "0", "100", previousEvent.String(), time.Now().UTC(),
			))
		mock.ExpectExec(`UPDATE "gl_balances" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.ApplyLine(ctx, key, uuid.New(), decimal.RequireFromString("25"), decimal.Zero, masterdata.NormalSideDebit)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormGLBalanceRepository_SumForPeriod(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormGLBalanceRepository(db)
	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(debit_amount\), 0\) AS total_debit`).
		WillReturnRows(sqlmock.NewRows([]string{"total_debit", "total_credit", "row_count"}).
			AddRow("1500.00", "1500.00", int64(4)))

	debit, credit, rows, err := repo.SumForPeriod(context.Background(), tenantID, 2025, 3)
	require.NoError(t, err)
	assert.True(t, debit.Equal(decimal.RequireFromString("1500.00")))
	assert.True(t, credit.Equal(decimal.RequireFromString("1500.00")))
	assert.Equal(t, int64(4), rows)
}
