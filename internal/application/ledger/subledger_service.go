package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	domainledger "github.com/airp/ledger/internal/domain/ledger"
	"github.com/airp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubledgerService appends the AP/AR events the aging projection feeds on:
// invoices entering the books and payments settling them.
type SubledgerService struct {
	store  shared.EventStore
	logger *zap.Logger
}

// NewSubledgerService creates a new SubledgerService
func NewSubledgerService(store shared.EventStore, logger *zap.Logger) *SubledgerService {
	return &SubledgerService{store: store, logger: logger}
}

// AppendResult reports a recorded sub-ledger event
type AppendResult struct {
	AggregateID   uuid.UUID `json:"aggregateId"`
	EventID       uuid.UUID `json:"eventId"`
	CorrelationID uuid.UUID `json:"correlationId"`
	Status        string    `json:"status"`
}

// RecordInvoiceReceived appends an InvoiceReceived event (AP side)
func (s *SubledgerService) RecordInvoiceReceived(ctx context.Context, tenantID uuid.UUID, payload *domainledger.InvoiceReceivedPayload, userID *uuid.UUID) (*AppendResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return s.append(ctx, tenantID, payload.InvoiceID, domainledger.AggregateTypeInvoice, domainledger.EventTypeInvoiceReceived, payload, userID)
}

// RecordInvoiceIssued appends an InvoiceIssued event (AR side)
func (s *SubledgerService) RecordInvoiceIssued(ctx context.Context, tenantID uuid.UUID, payload *domainledger.InvoiceIssuedPayload, userID *uuid.UUID) (*AppendResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return s.append(ctx, tenantID, payload.InvoiceID, domainledger.AggregateTypeInvoice, domainledger.EventTypeInvoiceIssued, payload, userID)
}

// RecordPayment appends a PaymentExecuted event against an invoice
func (s *SubledgerService) RecordPayment(ctx context.Context, tenantID uuid.UUID, payload *domainledger.PaymentExecutedPayload, userID *uuid.UUID) (*AppendResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return s.append(ctx, tenantID, payload.PaymentID, domainledger.AggregateTypePayment, domainledger.EventTypePaymentExecuted, payload, userID)
}

func (s *SubledgerService) append(ctx context.Context, tenantID, aggregateID uuid.UUID, aggregateType, eventType string, payload domainledger.Payload, userID *uuid.UUID) (*AppendResult, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	stored, err := s.store.Append(ctx, shared.ProposedEvent{
		TenantID:      tenantID,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       data,
		UserID:        userID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subledger event recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("event_type", eventType),
		zap.String("aggregate_id", aggregateID.String()))

	return &AppendResult{
		AggregateID:   aggregateID,
		EventID:       stored.EventID,
		CorrelationID: stored.CorrelationID,
		Status:        "recorded",
	}, nil
}
