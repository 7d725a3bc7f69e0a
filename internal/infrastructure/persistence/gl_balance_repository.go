package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/airp/ledger/internal/domain/masterdata"
	"github.com/airp/ledger/internal/domain/projection"
	"github.com/airp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGLBalanceRepository implements projection.GLBalanceRepository using GORM
type GormGLBalanceRepository struct {
	db *gorm.DB
}

// NewGormGLBalanceRepository creates a new GormGLBalanceRepository
func NewGormGLBalanceRepository(db *gorm.DB) *GormGLBalanceRepository {
	return &GormGLBalanceRepository{db: db}
}

// ApplyLine adds a line's amounts to the balance bucket inside one transaction.
// The bucket row is locked FOR UPDATE so concurrent postings to the same bucket
// serialize; postings to different buckets are unaffected. When the bucket's
// last applied event already equals eventID the call is a no-op.
func (r *GormGLBalanceRepository) ApplyLine(ctx context.Context, key projection.GLBalanceKey, eventID uuid.UUID, debit, credit decimal.Decimal, side masterdata.NormalSide) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.GLBalanceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND account_id = ? AND fiscal_year = ? AND fiscal_period = ? AND currency = ?",
				key.TenantID, key.AccountID, key.FiscalYear, key.FiscalPeriod, key.Currency).
			First(&model).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			model = models.GLBalanceModel{
				ID:           uuid.New(),
				TenantID:     key.TenantID,
				AccountID:    key.AccountID,
				FiscalYear:   key.FiscalYear,
				FiscalPeriod: key.FiscalPeriod,
				Currency:     key.Currency,
				DebitAmount:  decimal.Zero,
				CreditAmount: decimal.Zero,
				Balance:      decimal.Zero,
			}
		case err != nil:
			return err
		}

		if model.LastEventID != nil && *model.LastEventID == eventID {
			return nil
		}

		model.DebitAmount = model.DebitAmount.Add(debit)
		model.CreditAmount = model.CreditAmount.Add(credit)
		model.Balance = projection.SignedBalance(model.DebitAmount, model.CreditAmount, side)
		model.LastEventID = &eventID
		model.UpdatedAt = time.Now().UTC()

		return tx.Save(&model).Error
	})
}

// FindForPeriod returns all balance buckets of a tenant's fiscal period
func (r *GormGLBalanceRepository) FindForPeriod(ctx context.Context, tenantID uuid.UUID, fiscalYear, fiscalPeriod int) ([]projection.GLBalance, error) {
	var balanceModels []models.GLBalanceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND fiscal_year = ? AND fiscal_period = ?", tenantID, fiscalYear, fiscalPeriod).
		Order("account_id ASC").
		Find(&balanceModels).Error; err != nil {
		return nil, err
	}
	balances := make([]projection.GLBalance, len(balanceModels))
	for i, model := range balanceModels {
		balances[i] = *model.ToDomain()
	}
	return balances, nil
}

// SumForPeriod returns total debits and credits across a tenant's period
func (r *GormGLBalanceRepository) SumForPeriod(ctx context.Context, tenantID uuid.UUID, fiscalYear, fiscalPeriod int) (decimal.Decimal, decimal.Decimal, int64, error) {
	var result struct {
		TotalDebit  decimal.Decimal
		TotalCredit decimal.Decimal
		RowCount    int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.GLBalanceModel{}).
		Select("COALESCE(SUM(debit_amount), 0) AS total_debit, COALESCE(SUM(credit_amount), 0) AS total_credit, COUNT(*) AS row_count").
		Where("tenant_id = ? AND fiscal_year = ? AND fiscal_period = ?", tenantID, fiscalYear, fiscalPeriod).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, 0, err
	}
	return result.TotalDebit, result.TotalCredit, result.RowCount, nil
}
