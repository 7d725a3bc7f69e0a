package projection

import (
	"context"
	"time"

	"github.com/airp/ledger/internal/domain/masterdata"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GLBalanceKey identifies one balance bucket. Created lazily on first
// posting to that account/period; never deleted.
type GLBalanceKey struct {
	TenantID     uuid.UUID
	AccountID    uuid.UUID
	FiscalYear   int
	FiscalPeriod int
	Currency     string
}

// GLBalance is a per-period accumulated balance row, owned exclusively
// by the projection consumer.
type GLBalance struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	AccountID    uuid.UUID
	FiscalYear   int
	FiscalPeriod int
	Currency     string
	DebitAmount  decimal.Decimal
	CreditAmount decimal.Decimal
	Balance      decimal.Decimal
	LastEventID  *uuid.UUID
	UpdatedAt    time.Time
}

// SignedBalance computes the balance from accumulated sides and the account's
// normal-balance side: debit - credit for debit-normal accounts, credit - debit
// otherwise. This is the single authoritative sign convention.
func SignedBalance(debit, credit decimal.Decimal, side masterdata.NormalSide) decimal.Decimal {
	if side == masterdata.NormalSideDebit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// GLBalanceRepository persists balance buckets. ApplyLine must serialize
// concurrent read-modify-write of the same bucket (row lock or transaction)
// while postings to different buckets proceed independently.
type GLBalanceRepository interface {
	// ApplyLine adds a line's amounts to the bucket, recomputing the signed
	// balance, inside one transaction with the bucket row locked.
	// If the bucket's last applied event already equals eventID the call is
	// a no-op, which keeps replays and redeliveries from double-counting.
	ApplyLine(ctx context.Context, key GLBalanceKey, eventID uuid.UUID, debit, credit decimal.Decimal, side masterdata.NormalSide) error
	// FindForPeriod returns all buckets of a tenant's fiscal period
	FindForPeriod(ctx context.Context, tenantID uuid.UUID, fiscalYear, fiscalPeriod int) ([]GLBalance, error)
	// SumForPeriod returns total debits and credits across a tenant's period
	SumForPeriod(ctx context.Context, tenantID uuid.UUID, fiscalYear, fiscalPeriod int) (debit, credit decimal.Decimal, rows int64, err error)
}
