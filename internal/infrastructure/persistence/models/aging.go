package models

import (
	"time"

	"github.com/airp/ledger/internal/domain/projection"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgingRecordModel is one bucketed invoice of an aging snapshot. Snapshots
// are replaced wholesale per (tenant, side, as-of date), never patched.
type AgingRecordModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_subledger_aging_snapshot,priority:1"`
	Side             string          `gorm:"type:varchar(2);not null;index:idx_subledger_aging_snapshot,priority:2"`
	PartyID          uuid.UUID       `gorm:"type:uuid;not null"`
	InvoiceID        uuid.UUID       `gorm:"type:uuid;not null"`
	Currency         string          `gorm:"type:char(3);not null"`
	TotalOutstanding decimal.Decimal `gorm:"type:numeric(19,4);not null"`
	CurrentAmount    decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0"`
	Bucket30         decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0"`
	Bucket60         decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0"`
	Bucket90         decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0"`
	Bucket120Plus    decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0"`
	AsOfDate         time.Time       `gorm:"type:date;not null;index:idx_subledger_aging_snapshot,priority:3"`
	CreatedAt        time.Time       `gorm:"not null;default:now()"`
}

// TableName returns the table name for GORM
func (AgingRecordModel) TableName() string {
	return "subledger_aging"
}

// ToDomain converts the persistence model to a domain AgingRecord
func (m *AgingRecordModel) ToDomain() *projection.AgingRecord {
	return &projection.AgingRecord{
		ID:               m.ID,
		TenantID:         m.TenantID,
		Side:             projection.SubledgerSide(m.Side),
		PartyID:          m.PartyID,
		InvoiceID:        m.InvoiceID,
		Currency:         m.Currency,
		TotalOutstanding: m.TotalOutstanding,
		CurrentAmount:    m.CurrentAmount,
		Bucket30:         m.Bucket30,
		Bucket60:         m.Bucket60,
		Bucket90:         m.Bucket90,
		Bucket120Plus:    m.Bucket120Plus,
		AsOfDate:         m.AsOfDate,
	}
}

// AgingRecordModelFromDomain creates a persistence model from a domain record
func AgingRecordModelFromDomain(r *projection.AgingRecord) *AgingRecordModel {
	return &AgingRecordModel{
		ID:               r.ID,
		TenantID:         r.TenantID,
		Side:             string(r.Side),
		PartyID:          r.PartyID,
		InvoiceID:        r.InvoiceID,
		Currency:         r.Currency,
		TotalOutstanding: r.TotalOutstanding,
		CurrentAmount:    r.CurrentAmount,
		Bucket30:         r.Bucket30,
		Bucket60:         r.Bucket60,
		Bucket90:         r.Bucket90,
		Bucket120Plus:    r.Bucket120Plus,
		AsOfDate:         r.AsOfDate,
	}
}
