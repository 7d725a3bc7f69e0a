package projection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubledgerSide distinguishes the AP and AR sub-ledgers
type SubledgerSide string

const (
	SubledgerAP SubledgerSide = "AP"
	SubledgerAR SubledgerSide = "AR"
)

// AgingBucket is the days-past-due classification of an outstanding invoice
type AgingBucket string

const (
	BucketCurrent    AgingBucket = "current"
	Bucket30         AgingBucket = "bucket_30"
	Bucket60         AgingBucket = "bucket_60"
	Bucket90         AgingBucket = "bucket_90"
	Bucket120Plus    AgingBucket = "bucket_120_plus"
)

// BucketFor assigns days outstanding to exactly one bucket. An invoice due
// today or later is current; one due exactly 30 days ago is bucket_30,
// 31 days ago is bucket_60.
func BucketFor(daysOutstanding int) AgingBucket {
	switch {
	case daysOutstanding <= 0:
		return BucketCurrent
	case daysOutstanding <= 30:
		return Bucket30
	case daysOutstanding <= 60:
		return Bucket60
	case daysOutstanding <= 90:
		return Bucket90
	default:
		return Bucket120Plus
	}
}

// OpenInvoice is the tracked state of an unpaid or partially-paid invoice,
// maintained from invoice and payment events.
type OpenInvoice struct {
	InvoiceID     uuid.UUID
	TenantID      uuid.UUID
	Side          SubledgerSide
	PartyID       uuid.UUID // vendor for AP, customer for AR
	InvoiceNumber string
	Currency      string
	GrossAmount   decimal.Decimal
	Outstanding   decimal.Decimal
	DueDate       time.Time
	Closed        bool
}

// AgingRecord is one outstanding invoice bucketed as of a given date.
// Recomputed, not incrementally patched: each run supersedes prior rows
// for the same as-of date.
type AgingRecord struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	Side             SubledgerSide
	PartyID          uuid.UUID
	InvoiceID        uuid.UUID
	Currency         string
	TotalOutstanding decimal.Decimal
	CurrentAmount    decimal.Decimal
	Bucket30         decimal.Decimal
	Bucket60         decimal.Decimal
	Bucket90         decimal.Decimal
	Bucket120Plus    decimal.Decimal
	AsOfDate         time.Time
}

// BuildAgingRecords buckets every open invoice as of asOf. The full
// outstanding amount of an invoice falls into exactly one bucket.
func BuildAgingRecords(invoices []OpenInvoice, asOf time.Time) []AgingRecord {
	records := make([]AgingRecord, 0, len(invoices))
	day := asOf.Truncate(24 * time.Hour)
	for i := range invoices {
		inv := &invoices[i]
		if inv.Closed || !inv.Outstanding.IsPositive() {
			continue
		}
		days := int(day.Sub(inv.DueDate.Truncate(24*time.Hour)).Hours() / 24)

		rec := AgingRecord{
			ID:               uuid.New(),
			TenantID:         inv.TenantID,
			Side:             inv.Side,
			PartyID:          inv.PartyID,
			InvoiceID:        inv.InvoiceID,
			Currency:         inv.Currency,
			TotalOutstanding: inv.Outstanding,
			CurrentAmount:    decimal.Zero,
			Bucket30:         decimal.Zero,
			Bucket60:         decimal.Zero,
			Bucket90:         decimal.Zero,
			Bucket120Plus:    decimal.Zero,
			AsOfDate:         day,
		}
		switch BucketFor(days) {
		case BucketCurrent:
			rec.CurrentAmount = inv.Outstanding
		case Bucket30:
			rec.Bucket30 = inv.Outstanding
		case Bucket60:
			rec.Bucket60 = inv.Outstanding
		case Bucket90:
			rec.Bucket90 = inv.Outstanding
		case Bucket120Plus:
			rec.Bucket120Plus = inv.Outstanding
		}
		records = append(records, rec)
	}
	return records
}

// OpenInvoiceRepository tracks outstanding invoice state
type OpenInvoiceRepository interface {
	// Upsert records or refreshes an open invoice, keyed by invoice id
	Upsert(ctx context.Context, invoice *OpenInvoice) error
	// ApplyPayment reduces the outstanding amount, closing the invoice when
	// it reaches zero. Unknown invoice ids return shared.ErrNotFound.
	ApplyPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, amount decimal.Decimal) error
	// FindOpenForTenant returns open invoices for one sub-ledger side
	FindOpenForTenant(ctx context.Context, tenantID uuid.UUID, side SubledgerSide) ([]OpenInvoice, error)
}

// AgingRepository persists aging snapshots
type AgingRepository interface {
	// ReplaceForDate deletes prior rows for (tenant, side, asOf) and inserts
	// the new snapshot in one transaction.
	ReplaceForDate(ctx context.Context, tenantID uuid.UUID, side SubledgerSide, asOf time.Time, records []AgingRecord) error
	// FindLatest returns the most recent snapshot for a tenant and side
	FindLatest(ctx context.Context, tenantID uuid.UUID, side SubledgerSide) ([]AgingRecord, error)
}
