package models

import (
	"time"

	"github.com/airp/ledger/internal/domain/projection"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalEntryModel is the read-side header of a posted journal entry,
// denormalized from JournalEntryPosted events. Rebuildable by replay.
type JournalEntryModel struct {
	EntryID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index:idx_journal_entries_tenant"`
	EventID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	EntryNumber  string    `gorm:"type:varchar(50);not null"`
	EntryDate    time.Time `gorm:"type:date;not null"`
	PostingDate  time.Time `gorm:"type:date;not null"`
	EntryType    string    `gorm:"type:varchar(20);not null"`
	SourceType   string    `gorm:"type:varchar(50);not null"`
	SourceRefID  string    `gorm:"type:varchar(255)"`
	Description  string    `gorm:"type:text"`
	Currency     string    `gorm:"type:char(3);not null"`
	TotalDebit   decimal.Decimal `gorm:"type:numeric(19,4);not null"`
	TotalCredit  decimal.Decimal `gorm:"type:numeric(19,4);not null"`
	FiscalYear   int       `gorm:"not null;index:idx_journal_entries_period,priority:1"`
	FiscalPeriod int       `gorm:"not null;index:idx_journal_entries_period,priority:2"`
	CreatedAt    time.Time `gorm:"not null;default:now()"`

	Lines []JournalEntryLineModel `gorm:"foreignKey:EntryID;references:EntryID"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// JournalEntryLineModel is one read-side line of a posted entry with the
// account code resolved and sub-ledger dimensions promoted to columns.
type JournalEntryLineModel struct {
	EntryID      uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LineNumber   int             `gorm:"primaryKey"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null"`
	AccountID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_journal_entry_lines_account"`
	AccountCode  string          `gorm:"type:varchar(50);not null"`
	DebitAmount  decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0"`
	CreditAmount decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0"`
	Description  string          `gorm:"type:text"`
	VendorID     *uuid.UUID      `gorm:"type:uuid"`
	CustomerID   *uuid.UUID      `gorm:"type:uuid"`
	ProjectID    *uuid.UUID      `gorm:"type:uuid"`
	CostCenterID *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (JournalEntryLineModel) TableName() string {
	return "journal_entry_lines"
}

// ToDomain converts the persistence model to a domain MaterializedEntry
func (m *JournalEntryModel) ToDomain() *projection.MaterializedEntry {
	return &projection.MaterializedEntry{
		EntryID:      m.EntryID,
		TenantID:     m.TenantID,
		EventID:      m.EventID,
		EntryNumber:  m.EntryNumber,
		EntryDate:    m.EntryDate,
		PostingDate:  m.PostingDate,
		EntryType:    m.EntryType,
		SourceType:   m.SourceType,
		SourceRefID:  m.SourceRefID,
		Description:  m.Description,
		Currency:     m.Currency,
		TotalDebit:   m.TotalDebit,
		TotalCredit:  m.TotalCredit,
		FiscalYear:   m.FiscalYear,
		FiscalPeriod: m.FiscalPeriod,
	}
}

// JournalEntryModelFromDomain creates a persistence model from a domain entry
func JournalEntryModelFromDomain(e *projection.MaterializedEntry) *JournalEntryModel {
	return &JournalEntryModel{
		EntryID:      e.EntryID,
		TenantID:     e.TenantID,
		EventID:      e.EventID,
		EntryNumber:  e.EntryNumber,
		EntryDate:    e.EntryDate,
		PostingDate:  e.PostingDate,
		EntryType:    e.EntryType,
		SourceType:   e.SourceType,
		SourceRefID:  e.SourceRefID,
		Description:  e.Description,
		Currency:     e.Currency,
		TotalDebit:   e.TotalDebit,
		TotalCredit:  e.TotalCredit,
		FiscalYear:   e.FiscalYear,
		FiscalPeriod: e.FiscalPeriod,
	}
}

// JournalEntryLineModelFromDomain creates a persistence model from a domain line
func JournalEntryLineModelFromDomain(l *projection.MaterializedLine) *JournalEntryLineModel {
	return &JournalEntryLineModel{
		EntryID:      l.EntryID,
		LineNumber:   l.LineNumber,
		TenantID:     l.TenantID,
		AccountID:    l.AccountID,
		AccountCode:  l.AccountCode,
		DebitAmount:  l.DebitAmount,
		CreditAmount: l.CreditAmount,
		Description:  l.Description,
		VendorID:     l.VendorID,
		CustomerID:   l.CustomerID,
		ProjectID:    l.ProjectID,
		CostCenterID: l.CostCenterID,
	}
}
