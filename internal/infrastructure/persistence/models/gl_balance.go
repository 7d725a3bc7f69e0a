package models

import (
	"time"

	"github.com/airp/ledger/internal/domain/projection"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GLBalanceModel is the persistence model for per-period account balances.
// One row per (tenant, account, fiscal year, fiscal period, currency) bucket,
// created lazily on first posting.
type GLBalanceModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_gl_balances_bucket,priority:1"`
	AccountID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_gl_balances_bucket,priority:2"`
	FiscalYear   int             `gorm:"not null;uniqueIndex:idx_gl_balances_bucket,priority:3"`
	FiscalPeriod int             `gorm:"not null;uniqueIndex:idx_gl_balances_bucket,priority:4"`
	Currency     string          `gorm:"type:char(3);not null;uniqueIndex:idx_gl_balances_bucket,priority:5"`
	DebitAmount  decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0"`
	CreditAmount decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0"`
	Balance      decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0"`
	LastEventID  *uuid.UUID      `gorm:"type:uuid"`
	UpdatedAt    time.Time       `gorm:"not null;default:now()"`
}

// TableName returns the table name for GORM
func (GLBalanceModel) TableName() string {
	return "gl_balances"
}

// ToDomain converts the persistence model to a domain GLBalance
func (m *GLBalanceModel) ToDomain() *projection.GLBalance {
	return &projection.GLBalance{
		ID:           m.ID,
		TenantID:     m.TenantID,
		AccountID:    m.AccountID,
		FiscalYear:   m.FiscalYear,
		FiscalPeriod: m.FiscalPeriod,
		Currency:     m.Currency,
		DebitAmount:  m.DebitAmount,
		CreditAmount: m.CreditAmount,
		Balance:      m.Balance,
		LastEventID:  m.LastEventID,
		UpdatedAt:    m.UpdatedAt,
	}
}
