package projection

import (
	"context"
	"errors"
	"fmt"

	domainledger "github.com/airp/ledger/internal/domain/ledger"
	"github.com/airp/ledger/internal/domain/masterdata"
	domainprojection "github.com/airp/ledger/internal/domain/projection"
	"github.com/airp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// JournalEntryProjector folds JournalEntryPosted events into the read side:
// materialized entries and per-period GL balances. It owns those tables
// exclusively; nothing else writes them.
type JournalEntryProjector struct {
	accounts masterdata.AccountLookup
	entries  domainprojection.MaterializedEntryRepository
	balances domainprojection.GLBalanceRepository
	registry *domainledger.PayloadRegistry
	logger   *zap.Logger
	metrics  shared.MetricsSink
}

// NewJournalEntryProjector creates a new JournalEntryProjector
func NewJournalEntryProjector(
	accounts masterdata.AccountLookup,
	entries domainprojection.MaterializedEntryRepository,
	balances domainprojection.GLBalanceRepository,
	registry *domainledger.PayloadRegistry,
	logger *zap.Logger,
	metrics shared.MetricsSink,
) *JournalEntryProjector {
	if metrics == nil {
		metrics = shared.NopMetrics{}
	}
	return &JournalEntryProjector{
		accounts: accounts,
		entries:  entries,
		balances: balances,
		registry: registry,
		logger:   logger,
		metrics:  metrics,
	}
}

// EventTypes implements shared.EventHandler
func (p *JournalEntryProjector) EventTypes() []string {
	return []string{domainledger.EventTypeJournalEntryPosted}
}

// Handle projects one posted entry. An unresolvable account code on a line
// is a soft failure: the line is skipped with a warning and the rest of the
// entry still lands. A storage failure is returned, so the message is
// redelivered and retried.
func (p *JournalEntryProjector) Handle(ctx context.Context, event *shared.StoredEvent) error {
	payload, err := p.registry.DecodeJournalEntry(event.Payload)
	if err != nil {
		// A malformed payload will never become well-formed on retry.
		p.logger.Error("dropping malformed journal entry event",
			zap.String("event_id", event.EventID.String()),
			zap.Error(err))
		p.metrics.IncCounter(shared.MetricProjectionFailures, map[string]string{"reason": "malformed"})
		return nil
	}

	fiscalYear, fiscalPeriod, err := domainledger.FiscalPeriodOf(payload.PostingDate)
	if err != nil {
		p.logger.Error("dropping journal entry event with invalid posting date",
			zap.String("event_id", event.EventID.String()),
			zap.String("posting_date", payload.PostingDate),
			zap.Error(err))
		p.metrics.IncCounter(shared.MetricProjectionFailures, map[string]string{"reason": "invalid_date"})
		return nil
	}

	entryDate, _ := domainledger.ParseDate(payload.EntryDate)
	postingDate, _ := domainledger.ParseDate(payload.PostingDate)

	entry := &domainprojection.MaterializedEntry{
		EntryID:      event.AggregateID,
		TenantID:     event.TenantID,
		EventID:      event.EventID,
		EntryNumber:  payload.EntryNumber,
		EntryDate:    entryDate,
		PostingDate:  postingDate,
		EntryType:    payload.EntryType,
		SourceType:   payload.SourceType,
		SourceRefID:  payload.SourceRefID,
		Description:  payload.Description,
		Currency:     payload.Currency,
		TotalDebit:   payload.TotalDebit,
		TotalCredit:  payload.TotalCredit,
		FiscalYear:   fiscalYear,
		FiscalPeriod: fiscalPeriod,
	}

	type resolvedLine struct {
		line    domainprojection.MaterializedLine
		account *masterdata.Account
	}
	resolved := make([]resolvedLine, 0, len(payload.Lines))
	for i := range payload.Lines {
		line := &payload.Lines[i]
		account, err := p.accounts.FindByCode(ctx, event.TenantID, line.AccountCode)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				p.logger.Warn("skipping line with unresolvable account",
					zap.String("event_id", event.EventID.String()),
					zap.String("account_code", line.AccountCode),
					zap.Int("line_number", line.LineNumber))
				p.metrics.IncCounter(shared.MetricLinesSkipped, map[string]string{"account_code": line.AccountCode})
				continue
			}
			return fmt.Errorf("resolve account %s: %w", line.AccountCode, err)
		}
		resolved = append(resolved, resolvedLine{
			line: domainprojection.MaterializedLine{
				EntryID:      event.AggregateID,
				TenantID:     event.TenantID,
				LineNumber:   line.LineNumber,
				AccountID:    account.ID,
				AccountCode:  line.AccountCode,
				DebitAmount:  line.DebitAmount,
				CreditAmount: line.CreditAmount,
				Description:  line.Description,
				VendorID:     line.VendorID,
				CustomerID:   line.CustomerID,
				ProjectID:    line.ProjectID,
				CostCenterID: line.CostCenterID,
			},
			account: account,
		})
	}

	lines := make([]domainprojection.MaterializedLine, len(resolved))
	for i := range resolved {
		lines[i] = resolved[i].line
	}
	if err := p.entries.SaveEntry(ctx, entry, lines); err != nil {
		return fmt.Errorf("materialize entry %s: %w", event.AggregateID, err)
	}

	// Aggregate lines per bucket first: the bucket's last_event_id guard
	// expects at most one application of this event per bucket.
	type bucketDelta struct {
		debit   decimal.Decimal
		credit  decimal.Decimal
		side    masterdata.NormalSide
		account string
	}
	deltas := make(map[domainprojection.GLBalanceKey]*bucketDelta)
	order := make([]domainprojection.GLBalanceKey, 0, len(resolved))
	for i := range resolved {
		rl := &resolved[i]
		key := domainprojection.GLBalanceKey{
			TenantID:     event.TenantID,
			AccountID:    rl.account.ID,
			FiscalYear:   fiscalYear,
			FiscalPeriod: fiscalPeriod,
			Currency:     payload.Currency,
		}
		d, ok := deltas[key]
		if !ok {
			d = &bucketDelta{debit: decimal.Zero, credit: decimal.Zero, side: rl.account.NormalSide, account: rl.line.AccountCode}
			deltas[key] = d
			order = append(order, key)
		}
		d.debit = d.debit.Add(rl.line.DebitAmount)
		d.credit = d.credit.Add(rl.line.CreditAmount)
	}
	for _, key := range order {
		d := deltas[key]
		if err := p.balances.ApplyLine(ctx, key, event.EventID, d.debit, d.credit, d.side); err != nil {
			return fmt.Errorf("apply balance for account %s: %w", d.account, err)
		}
	}

	p.metrics.IncCounter(shared.MetricEventsProjected, map[string]string{"event_type": event.EventType})
	p.logger.Debug("journal entry projected",
		zap.String("event_id", event.EventID.String()),
		zap.String("entry_number", payload.EntryNumber),
		zap.Int("lines", len(lines)))
	return nil
}

var _ shared.EventHandler = (*JournalEntryProjector)(nil)
