package models

import (
	"time"

	"github.com/airp/ledger/internal/domain/projection"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenInvoiceModel tracks the outstanding state of AP and AR invoices,
// maintained by the projection consumer from invoice and payment events.
type OpenInvoiceModel struct {
	InvoiceID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_open_invoices_tenant_side,priority:1"`
	Side          string          `gorm:"type:varchar(2);not null;index:idx_open_invoices_tenant_side,priority:2"`
	PartyID       uuid.UUID       `gorm:"type:uuid;not null"`
	InvoiceNumber string          `gorm:"type:varchar(100);not null"`
	Currency      string          `gorm:"type:char(3);not null"`
	GrossAmount   decimal.Decimal `gorm:"type:numeric(19,4);not null"`
	Outstanding   decimal.Decimal `gorm:"type:numeric(19,4);not null"`
	DueDate       time.Time       `gorm:"type:date;not null"`
	Closed        bool            `gorm:"not null;default:false"`
	UpdatedAt     time.Time       `gorm:"not null;default:now()"`
}

// TableName returns the table name for GORM
func (OpenInvoiceModel) TableName() string {
	return "open_invoices"
}

// ToDomain converts the persistence model to a domain OpenInvoice
func (m *OpenInvoiceModel) ToDomain() *projection.OpenInvoice {
	return &projection.OpenInvoice{
		InvoiceID:     m.InvoiceID,
		TenantID:      m.TenantID,
		Side:          projection.SubledgerSide(m.Side),
		PartyID:       m.PartyID,
		InvoiceNumber: m.InvoiceNumber,
		Currency:      m.Currency,
		GrossAmount:   m.GrossAmount,
		Outstanding:   m.Outstanding,
		DueDate:       m.DueDate,
		Closed:        m.Closed,
	}
}

// OpenInvoiceModelFromDomain creates a persistence model from a domain invoice
func OpenInvoiceModelFromDomain(inv *projection.OpenInvoice) *OpenInvoiceModel {
	return &OpenInvoiceModel{
		InvoiceID:     inv.InvoiceID,
		TenantID:      inv.TenantID,
		Side:          string(inv.Side),
		PartyID:       inv.PartyID,
		InvoiceNumber: inv.InvoiceNumber,
		Currency:      inv.Currency,
		GrossAmount:   inv.GrossAmount,
		Outstanding:   inv.Outstanding,
		DueDate:       inv.DueDate,
		Closed:        inv.Closed,
	}
}
