package ledger

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types appended to the store. Each has exactly one payload schema,
// registered in the PayloadRegistry.
const (
	EventTypeJournalEntryPosted = "JournalEntryPosted"
	EventTypeInvoiceReceived    = "InvoiceReceived"
	EventTypeInvoiceIssued      = "InvoiceIssued"
	EventTypePaymentExecuted    = "PaymentExecuted"
)

// Aggregate types
const (
	AggregateTypeJournalEntry = "JournalEntry"
	AggregateTypeInvoice      = "Invoice"
	AggregateTypePayment      = "Payment"
)

// Entry types
const (
	EntryTypeManual    = "Manual"
	EntryTypeReversing = "Reversing"
)

// SourceTypeManual marks entries keyed in by a user rather than produced
// by an upstream document flow.
const SourceTypeManual = "Manual"

// ReversalPrefix tags reversing entries and their lines
const ReversalPrefix = "REVERSAL: "

// Payload is a decoded event payload. Validate is called at the
// deserialization boundary; payloads are never trusted implicitly.
type Payload interface {
	Validate() error
}

// JournalEntryLine is one line of a journal entry payload.
// Exactly one of DebitAmount/CreditAmount is non-zero.
type JournalEntryLine struct {
	LineNumber   int             `json:"lineNumber"`
	AccountCode  string          `json:"accountCode"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Description  string          `json:"description,omitempty"`

	// Sub-ledger dimensions. AR control accounts require CustomerID,
	// AP control accounts require VendorID.
	VendorID     *uuid.UUID `json:"vendorId,omitempty"`
	CustomerID   *uuid.UUID `json:"customerId,omitempty"`
	ProjectID    *uuid.UUID `json:"projectId,omitempty"`
	CostCenterID *uuid.UUID `json:"costCenterId,omitempty"`

	InvoiceNumber string            `json:"invoiceNumber,omitempty"`
	DueDate       string            `json:"dueDate,omitempty"`
	PaymentTerms  string            `json:"paymentTerms,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// IsOneSided returns true when exactly one of debit/credit is non-zero
func (l *JournalEntryLine) IsOneSided() bool {
	return l.DebitAmount.IsZero() != l.CreditAmount.IsZero()
}

// JournalEntryPayload is the schema of a JournalEntryPosted event.
// An entry is posted once and is immutable; a correction is a new
// reversing entry, never an edit.
type JournalEntryPayload struct {
	EntryNumber string             `json:"entryNumber"`
	EntryDate   string             `json:"entryDate"`   // YYYY-MM-DD
	PostingDate string             `json:"postingDate"` // YYYY-MM-DD
	EntryType   string             `json:"entryType"`
	SourceType  string             `json:"sourceType,omitempty"`
	SourceRefID string             `json:"sourceRefId,omitempty"`
	Description string             `json:"description"`
	Currency    string             `json:"currency"`
	TotalDebit  decimal.Decimal    `json:"totalDebit"`
	TotalCredit decimal.Decimal    `json:"totalCredit"`
	Lines       []JournalEntryLine `json:"lines"`
}

// Validate checks structural integrity of the payload. Balance and
// control-account rules live in the EntryValidator; this guards the
// deserialization boundary only.
func (p *JournalEntryPayload) Validate() error {
	if len(p.Lines) == 0 {
		return NewValidationError("EMPTY_ENTRY", "journal entry has no lines")
	}
	if strings.TrimSpace(p.Currency) == "" {
		return NewValidationError("MISSING_CURRENCY", "journal entry has no currency")
	}
	if _, _, err := FiscalPeriodOf(p.PostingDate); err != nil {
		return NewValidationError("INVALID_DATE", "posting date is not a valid YYYY-MM-DD date")
	}
	for i := range p.Lines {
		if p.Lines[i].DebitAmount.IsNegative() || p.Lines[i].CreditAmount.IsNegative() {
			return NewValidationError("NEGATIVE_AMOUNT", "line amounts must not be negative")
		}
	}
	return nil
}

// SumDebits returns the sum of all line debit amounts
func (p *JournalEntryPayload) SumDebits() decimal.Decimal {
	sum := decimal.Zero
	for i := range p.Lines {
		sum = sum.Add(p.Lines[i].DebitAmount)
	}
	return sum
}

// SumCredits returns the sum of all line credit amounts
func (p *JournalEntryPayload) SumCredits() decimal.Decimal {
	sum := decimal.Zero
	for i := range p.Lines {
		sum = sum.Add(p.Lines[i].CreditAmount)
	}
	return sum
}

// Reverse builds the compensating payload: every line swaps debit and
// credit, sub-ledger dimensions are preserved, descriptions are tagged.
func (p *JournalEntryPayload) Reverse(entryDate, reason string) *JournalEntryPayload {
	lines := make([]JournalEntryLine, len(p.Lines))
	for i, l := range p.Lines {
		rl := l
		rl.DebitAmount = l.CreditAmount
		rl.CreditAmount = l.DebitAmount
		rl.Description = ReversalPrefix + l.Description
		lines[i] = rl
	}
	return &JournalEntryPayload{
		EntryNumber: "REV-" + p.EntryNumber,
		EntryDate:   entryDate,
		PostingDate: entryDate,
		EntryType:   EntryTypeReversing,
		SourceType:  SourceTypeManual,
		Description: ReversalPrefix + p.Description + " - Reason: " + reason,
		Currency:    p.Currency,
		TotalDebit:  p.TotalCredit,
		TotalCredit: p.TotalDebit,
		Lines:       lines,
	}
}

// InvoiceReceivedPayload is the schema of an InvoiceReceived event (AP side)
type InvoiceReceivedPayload struct {
	InvoiceID     uuid.UUID       `json:"invoiceId"`
	VendorID      uuid.UUID       `json:"vendorId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Currency      string          `json:"currency"`
	GrossAmount   decimal.Decimal `json:"grossAmount"`
	IssueDate     string          `json:"issueDate"`
	DueDate       string          `json:"dueDate"`
}

// Validate implements Payload
func (p *InvoiceReceivedPayload) Validate() error {
	return validateInvoice(p.InvoiceID, p.VendorID, p.GrossAmount, p.DueDate)
}

// InvoiceIssuedPayload is the schema of an InvoiceIssued event (AR side)
type InvoiceIssuedPayload struct {
	InvoiceID     uuid.UUID       `json:"invoiceId"`
	CustomerID    uuid.UUID       `json:"customerId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Currency      string          `json:"currency"`
	GrossAmount   decimal.Decimal `json:"grossAmount"`
	IssueDate     string          `json:"issueDate"`
	DueDate       string          `json:"dueDate"`
}

// Validate implements Payload
func (p *InvoiceIssuedPayload) Validate() error {
	return validateInvoice(p.InvoiceID, p.CustomerID, p.GrossAmount, p.DueDate)
}

// Payment sides
const (
	PaymentSideAP = "AP"
	PaymentSideAR = "AR"
)

// PaymentExecutedPayload is the schema of a PaymentExecuted event
type PaymentExecutedPayload struct {
	PaymentID   uuid.UUID       `json:"paymentId"`
	InvoiceID   uuid.UUID       `json:"invoiceId"`
	PaymentType string          `json:"paymentType"` // AP or AR
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"paymentDate"`
}

// Validate implements Payload
func (p *PaymentExecutedPayload) Validate() error {
	if p.PaymentID == uuid.Nil || p.InvoiceID == uuid.Nil {
		return NewValidationError("MISSING_REFERENCE", "payment and invoice ids are required")
	}
	if p.PaymentType != PaymentSideAP && p.PaymentType != PaymentSideAR {
		return NewValidationError("INVALID_PAYMENT_TYPE", "payment type must be AP or AR")
	}
	if !p.Amount.IsPositive() {
		return NewValidationError("INVALID_AMOUNT", "payment amount must be positive")
	}
	return nil
}

func validateInvoice(invoiceID, partyID uuid.UUID, gross decimal.Decimal, dueDate string) error {
	if invoiceID == uuid.Nil || partyID == uuid.Nil {
		return NewValidationError("MISSING_REFERENCE", "invoice and party ids are required")
	}
	if !gross.IsPositive() {
		return NewValidationError("INVALID_AMOUNT", "invoice gross amount must be positive")
	}
	if _, err := ParseDate(dueDate); err != nil {
		return NewValidationError("INVALID_DATE", "due date is not a valid YYYY-MM-DD date")
	}
	return nil
}
