package projection

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainledger "github.com/airp/ledger/internal/domain/ledger"
	domainprojection "github.com/airp/ledger/internal/domain/projection"
	"github.com/airp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AgingProjector maintains open invoice state from AP/AR events and
// recomputes the aging snapshot after every change. Snapshots are replaced
// wholesale per as-of date, never incrementally patched.
type AgingProjector struct {
	invoices domainprojection.OpenInvoiceRepository
	aging    domainprojection.AgingRepository
	registry *domainledger.PayloadRegistry
	logger   *zap.Logger
	metrics  shared.MetricsSink
	now      func() time.Time
}

// NewAgingProjector creates a new AgingProjector
func NewAgingProjector(
	invoices domainprojection.OpenInvoiceRepository,
	aging domainprojection.AgingRepository,
	registry *domainledger.PayloadRegistry,
	logger *zap.Logger,
	metrics shared.MetricsSink,
) *AgingProjector {
	if metrics == nil {
		metrics = shared.NopMetrics{}
	}
	return &AgingProjector{
		invoices: invoices,
		aging:    aging,
		registry: registry,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// WithClock overrides the as-of clock, for tests
func (p *AgingProjector) WithClock(now func() time.Time) *AgingProjector {
	p.now = now
	return p
}

// EventTypes implements shared.EventHandler
func (p *AgingProjector) EventTypes() []string {
	return []string{
		domainledger.EventTypeInvoiceReceived,
		domainledger.EventTypeInvoiceIssued,
		domainledger.EventTypePaymentExecuted,
	}
}

// Handle applies one sub-ledger event and rebuilds the affected side's snapshot
func (p *AgingProjector) Handle(ctx context.Context, event *shared.StoredEvent) error {
	payload, err := p.registry.Decode(event.EventType, event.Payload)
	if err != nil {
		p.logger.Error("dropping malformed subledger event",
			zap.String("event_id", event.EventID.String()),
			zap.String("event_type", event.EventType),
			zap.Error(err))
		p.metrics.IncCounter(shared.MetricProjectionFailures, map[string]string{"reason": "malformed"})
		return nil
	}

	var side domainprojection.SubledgerSide
	switch pl := payload.(type) {
	case *domainledger.InvoiceReceivedPayload:
		side = domainprojection.SubledgerAP
		if err := p.upsertInvoice(ctx, event, side, pl.InvoiceID, pl.VendorID, pl.InvoiceNumber, pl.Currency, pl.GrossAmount, pl.DueDate); err != nil {
			return err
		}
	case *domainledger.InvoiceIssuedPayload:
		side = domainprojection.SubledgerAR
		if err := p.upsertInvoice(ctx, event, side, pl.InvoiceID, pl.CustomerID, pl.InvoiceNumber, pl.Currency, pl.GrossAmount, pl.DueDate); err != nil {
			return err
		}
	case *domainledger.PaymentExecutedPayload:
		side = domainprojection.SubledgerSide(pl.PaymentType)
		err := p.invoices.ApplyPayment(ctx, event.TenantID, pl.InvoiceID, pl.Amount)
		if errors.Is(err, shared.ErrNotFound) {
			// Payment against an invoice this projection never saw.
			// Soft failure: warn and keep the stream moving.
			p.logger.Warn("payment references unknown invoice",
				zap.String("event_id", event.EventID.String()),
				zap.String("invoice_id", pl.InvoiceID.String()))
			p.metrics.IncCounter(shared.MetricLinesSkipped, map[string]string{"reason": "unknown_invoice"})
			return nil
		}
		if err != nil {
			return fmt.Errorf("apply payment %s: %w", pl.PaymentID, err)
		}
	default:
		p.logger.Warn("unexpected payload type on subledger topic",
			zap.String("event_type", event.EventType))
		return nil
	}

	if err := p.recompute(ctx, event.TenantID, side); err != nil {
		return err
	}
	p.metrics.IncCounter(shared.MetricEventsProjected, map[string]string{"event_type": event.EventType})
	return nil
}

func (p *AgingProjector) upsertInvoice(ctx context.Context, event *shared.StoredEvent, side domainprojection.SubledgerSide, invoiceID, partyID uuid.UUID, number, currency string, gross decimal.Decimal, dueDate string) error {
	due, err := domainledger.ParseDate(dueDate)
	if err != nil {
		p.logger.Error("dropping invoice event with invalid due date",
			zap.String("event_id", event.EventID.String()),
			zap.String("due_date", dueDate))
		p.metrics.IncCounter(shared.MetricProjectionFailures, map[string]string{"reason": "invalid_date"})
		return nil
	}
	invoice := &domainprojection.OpenInvoice{
		InvoiceID:     invoiceID,
		TenantID:      event.TenantID,
		Side:          side,
		PartyID:       partyID,
		InvoiceNumber: number,
		Currency:      currency,
		GrossAmount:   gross,
		Outstanding:   gross,
		DueDate:       due,
		Closed:        false,
	}
	if err := p.invoices.Upsert(ctx, invoice); err != nil {
		return fmt.Errorf("upsert invoice %s: %w", invoiceID, err)
	}
	return nil
}

// recompute rebuilds the side's snapshot for the tenant as of today
func (p *AgingProjector) recompute(ctx context.Context, tenantID uuid.UUID, side domainprojection.SubledgerSide) error {
	open, err := p.invoices.FindOpenForTenant(ctx, tenantID, side)
	if err != nil {
		return fmt.Errorf("load open invoices: %w", err)
	}
	asOf := p.now().UTC()
	records := domainprojection.BuildAgingRecords(open, asOf)
	if err := p.aging.ReplaceForDate(ctx, tenantID, side, asOf, records); err != nil {
		return fmt.Errorf("replace aging snapshot: %w", err)
	}
	p.logger.Debug("aging snapshot recomputed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("side", string(side)),
		zap.Int("invoices", len(records)))
	return nil
}

var _ shared.EventHandler = (*AgingProjector)(nil)
