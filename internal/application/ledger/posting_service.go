package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domainledger "github.com/airp/ledger/internal/domain/ledger"
	"github.com/airp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PostEntryInput is the application-level request to post a journal entry
type PostEntryInput struct {
	EntryDate   string
	PostingDate string
	Description string
	Currency    string
	SourceType  string
	SourceRefID string
	Lines       []domainledger.JournalEntryLine
	UserID      *uuid.UUID
}

// PostEntryResult reports a successful posting
type PostEntryResult struct {
	EntryID       uuid.UUID `json:"entryId"`
	EntryNumber   string    `json:"entryNumber"`
	EventID       uuid.UUID `json:"eventId"`
	CorrelationID uuid.UUID `json:"correlationId"`
	Status        string    `json:"status"`
}

// ReverseEntryResult reports a successful reversal
type ReverseEntryResult struct {
	ReversalEntryID uuid.UUID `json:"reversalEntryId"`
	OriginalEntryID uuid.UUID `json:"originalEntryId"`
	EntryNumber     string    `json:"entryNumber"`
	CorrelationID   uuid.UUID `json:"correlationId"`
	Status          string    `json:"status"`
}

// PostingService validates and appends journal entry events. Posting never
// touches projection tables; read models catch up through the bus.
type PostingService struct {
	store           shared.EventStore
	validator       *domainledger.EntryValidator
	registry        *domainledger.PayloadRegistry
	logger          *zap.Logger
	metrics         shared.MetricsSink
	defaultCurrency string
}

// NewPostingService creates a new PostingService
func NewPostingService(
	store shared.EventStore,
	validator *domainledger.EntryValidator,
	registry *domainledger.PayloadRegistry,
	logger *zap.Logger,
	metrics shared.MetricsSink,
	defaultCurrency string,
) *PostingService {
	if metrics == nil {
		metrics = shared.NopMetrics{}
	}
	if defaultCurrency == "" {
		defaultCurrency = "AED"
	}
	return &PostingService{
		store:           store,
		validator:       validator,
		registry:        registry,
		logger:          logger,
		metrics:         metrics,
		defaultCurrency: defaultCurrency,
	}
}

// PostEntry validates the entry and appends a JournalEntryPosted event.
// A validation failure leaves the store untouched.
func (s *PostingService) PostEntry(ctx context.Context, tenantID uuid.UUID, input PostEntryInput) (*PostEntryResult, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}

	payload := s.buildPayload(input)
	if err := s.validator.Validate(ctx, tenantID, payload); err != nil {
		return nil, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal entry payload: %w", err)
	}

	entryID := uuid.New()
	stored, err := s.store.Append(ctx, shared.ProposedEvent{
		TenantID:      tenantID,
		AggregateID:   entryID,
		AggregateType: domainledger.AggregateTypeJournalEntry,
		EventType:     domainledger.EventTypeJournalEntryPosted,
		Payload:       data,
		UserID:        input.UserID,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCounter(shared.MetricEntriesPosted, nil)
	s.logger.Info("journal entry posted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("entry_id", entryID.String()),
		zap.String("entry_number", payload.EntryNumber),
		zap.String("event_id", stored.EventID.String()))

	return &PostEntryResult{
		EntryID:       entryID,
		EntryNumber:   payload.EntryNumber,
		EventID:       stored.EventID,
		CorrelationID: stored.CorrelationID,
		Status:        "posted",
	}, nil
}

// ReverseEntry posts the compensating entry for a previously posted one.
// The reversal is a brand-new entry: validated like any other, linked to the
// original through causation and correlation, never an edit of history.
func (s *PostingService) ReverseEntry(ctx context.Context, tenantID, entryID uuid.UUID, reason string, userID *uuid.UUID) (*ReverseEntryResult, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}

	events, err := s.store.GetByAggregate(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	var original *shared.StoredEvent
	for _, event := range events {
		if event.EventType == domainledger.EventTypeJournalEntryPosted {
			original = event
			break
		}
	}
	if original == nil {
		return nil, shared.ErrEntryNotFound
	}

	originalPayload, err := s.registry.DecodeJournalEntry(original.Payload)
	if err != nil {
		return nil, err
	}

	today := domainledger.FormatDate(time.Now().UTC())
	reversal := originalPayload.Reverse(today, reason)
	if err := s.validator.Validate(ctx, tenantID, reversal); err != nil {
		return nil, err
	}

	data, err := json.Marshal(reversal)
	if err != nil {
		return nil, fmt.Errorf("marshal reversal payload: %w", err)
	}

	reversalID := uuid.New()
	causation := original.EventID
	stored, err := s.store.Append(ctx, shared.ProposedEvent{
		TenantID:      tenantID,
		AggregateID:   reversalID,
		AggregateType: domainledger.AggregateTypeJournalEntry,
		EventType:     domainledger.EventTypeJournalEntryPosted,
		Payload:       data,
		CausationID:   &causation,
		CorrelationID: original.CorrelationID,
		UserID:        userID,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCounter(shared.MetricEntriesReversed, nil)
	s.logger.Info("journal entry reversed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("original_entry_id", entryID.String()),
		zap.String("reversal_entry_id", reversalID.String()),
		zap.String("event_id", stored.EventID.String()))

	return &ReverseEntryResult{
		ReversalEntryID: reversalID,
		OriginalEntryID: entryID,
		EntryNumber:     reversal.EntryNumber,
		CorrelationID:   stored.CorrelationID,
		Status:          "reversed",
	}, nil
}

// buildPayload normalizes the input into the event schema: generated entry
// number, 1-based line numbers, computed totals, defaulted currency.
func (s *PostingService) buildPayload(input PostEntryInput) *domainledger.JournalEntryPayload {
	currency := input.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	sourceType := input.SourceType
	if sourceType == "" {
		sourceType = domainledger.SourceTypeManual
	}
	entryDate := input.EntryDate
	if entryDate == "" {
		entryDate = domainledger.FormatDate(time.Now().UTC())
	}
	postingDate := input.PostingDate
	if postingDate == "" {
		postingDate = entryDate
	}

	lines := make([]domainledger.JournalEntryLine, len(input.Lines))
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i, l := range input.Lines {
		l.LineNumber = i + 1
		lines[i] = l
		totalDebit = totalDebit.Add(l.DebitAmount)
		totalCredit = totalCredit.Add(l.CreditAmount)
	}

	return &domainledger.JournalEntryPayload{
		EntryNumber: fmt.Sprintf("JE-%d", time.Now().UnixMilli()),
		EntryDate:   entryDate,
		PostingDate: postingDate,
		EntryType:   domainledger.EntryTypeManual,
		SourceType:  sourceType,
		SourceRefID: input.SourceRefID,
		Description: input.Description,
		Currency:    currency,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Lines:       lines,
	}
}
