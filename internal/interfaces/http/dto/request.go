package dto

import (
	"fmt"

	domainledger "github.com/airp/ledger/internal/domain/ledger"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterValidations installs custom binding validators. Call once at startup.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := decimal.NewFromString(s)
		return err == nil
	})
}

// JournalEntryLineRequest is one line of a posting request. Amounts travel
// as decimal strings and are parsed strictly; a value that does not parse
// rejects the request rather than defaulting to zero.
type JournalEntryLineRequest struct {
	AccountCode  string            `json:"accountCode" binding:"required"`
	DebitAmount  string            `json:"debitAmount" binding:"omitempty,decimal"`
	CreditAmount string            `json:"creditAmount" binding:"omitempty,decimal"`
	Description  string            `json:"description"`
	VendorID     *uuid.UUID        `json:"vendorId"`
	CustomerID   *uuid.UUID        `json:"customerId"`
	ProjectID    *uuid.UUID        `json:"projectId"`
	CostCenterID *uuid.UUID        `json:"costCenterId"`
	InvoiceNumber string           `json:"invoiceNumber"`
	DueDate      string            `json:"dueDate" binding:"omitempty,datetime=2006-01-02"`
	PaymentTerms string            `json:"paymentTerms"`
	Metadata     map[string]string `json:"metadata"`
}

// PostJournalEntryRequest is the body of POST /api/v1/journal-entries
type PostJournalEntryRequest struct {
	EntryDate   string                    `json:"entryDate" binding:"omitempty,datetime=2006-01-02"`
	PostingDate string                    `json:"postingDate" binding:"omitempty,datetime=2006-01-02"`
	Description string                    `json:"description" binding:"required"`
	Currency    string                    `json:"currency" binding:"omitempty,len=3"`
	SourceType  string                    `json:"sourceType"`
	SourceRefID string                    `json:"sourceRefId"`
	Lines       []JournalEntryLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToLines converts the request lines into domain lines with parsed amounts
func (r *PostJournalEntryRequest) ToLines() ([]domainledger.JournalEntryLine, error) {
	lines := make([]domainledger.JournalEntryLine, len(r.Lines))
	for i := range r.Lines {
		in := &r.Lines[i]
		debit, err := parseAmount(in.DebitAmount)
		if err != nil {
			return nil, fmt.Errorf("line %d: debit amount %q is not a valid decimal", i+1, in.DebitAmount)
		}
		credit, err := parseAmount(in.CreditAmount)
		if err != nil {
			return nil, fmt.Errorf("line %d: credit amount %q is not a valid decimal", i+1, in.CreditAmount)
		}
		lines[i] = domainledger.JournalEntryLine{
			AccountCode:   in.AccountCode,
			DebitAmount:   debit,
			CreditAmount:  credit,
			Description:   in.Description,
			VendorID:      in.VendorID,
			CustomerID:    in.CustomerID,
			ProjectID:     in.ProjectID,
			CostCenterID:  in.CostCenterID,
			InvoiceNumber: in.InvoiceNumber,
			DueDate:       in.DueDate,
			PaymentTerms:  in.PaymentTerms,
			Metadata:      in.Metadata,
		}
	}
	return lines, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// ReverseEntryRequest is the body of POST /api/v1/journal-entries/:id/reverse
type ReverseEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RecordInvoiceRequest is the body of the AP/AR invoice endpoints
type RecordInvoiceRequest struct {
	InvoiceID     uuid.UUID `json:"invoiceId" binding:"required"`
	PartyID       uuid.UUID `json:"partyId" binding:"required"`
	InvoiceNumber string    `json:"invoiceNumber" binding:"required"`
	Currency      string    `json:"currency" binding:"required,len=3"`
	GrossAmount   string    `json:"grossAmount" binding:"required,decimal"`
	IssueDate     string    `json:"issueDate" binding:"omitempty,datetime=2006-01-02"`
	DueDate       string    `json:"dueDate" binding:"required,datetime=2006-01-02"`
}

// RecordPaymentRequest is the body of POST /api/v1/subledger/payments
type RecordPaymentRequest struct {
	PaymentID   uuid.UUID `json:"paymentId" binding:"required"`
	InvoiceID   uuid.UUID `json:"invoiceId" binding:"required"`
	PaymentType string    `json:"paymentType" binding:"required,oneof=AP AR"`
	Currency    string    `json:"currency" binding:"required,len=3"`
	Amount      string    `json:"amount" binding:"required,decimal"`
	PaymentDate string    `json:"paymentDate" binding:"omitempty,datetime=2006-01-02"`
}

// RedriveRequest is the body of POST /api/v1/admin/redrive
type RedriveRequest struct {
	FromSequence *int64 `json:"fromSequence" binding:"required,min=0"`
}
