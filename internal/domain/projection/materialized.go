package projection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterializedEntry is the denormalized read-side copy of a posted journal
// entry header. Disposable: fully rebuildable by replaying the event log.
type MaterializedEntry struct {
	EntryID      uuid.UUID
	TenantID     uuid.UUID
	EventID      uuid.UUID
	EntryNumber  string
	EntryDate    time.Time
	PostingDate  time.Time
	EntryType    string
	SourceType   string
	SourceRefID  string
	Description  string
	Currency     string
	TotalDebit   decimal.Decimal
	TotalCredit  decimal.Decimal
	FiscalYear   int
	FiscalPeriod int
}

// MaterializedLine is the read-side copy of one entry line with the account
// code resolved to an account id and dimensions promoted to columns.
type MaterializedLine struct {
	EntryID      uuid.UUID
	TenantID     uuid.UUID
	LineNumber   int
	AccountID    uuid.UUID
	AccountCode  string
	DebitAmount  decimal.Decimal
	CreditAmount decimal.Decimal
	Description  string
	VendorID     *uuid.UUID
	CustomerID   *uuid.UUID
	ProjectID    *uuid.UUID
	CostCenterID *uuid.UUID
}

// MaterializedEntryRepository persists read-side entries and lines.
// Saves are keyed by entry id and must be safe under redelivery.
type MaterializedEntryRepository interface {
	// SaveEntry upserts the header and its lines in one transaction.
	// A second save of the same entry id leaves existing rows untouched.
	SaveEntry(ctx context.Context, entry *MaterializedEntry, lines []MaterializedLine) error
	// FindByID loads a materialized entry header
	FindByID(ctx context.Context, tenantID, entryID uuid.UUID) (*MaterializedEntry, error)
}
