package projection

import (
	"context"
	"time"

	domainprojection "github.com/airp/ledger/internal/domain/projection"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TrialBalanceService computes the trial balance view over projected GL
// balances. Read-only; the period either balances within the epsilon or is
// reported as an integrity incident.
type TrialBalanceService struct {
	balances domainprojection.GLBalanceRepository
	logger   *zap.Logger
}

// NewTrialBalanceService creates a new TrialBalanceService
func NewTrialBalanceService(balances domainprojection.GLBalanceRepository, logger *zap.Logger) *TrialBalanceService {
	return &TrialBalanceService{balances: balances, logger: logger}
}

// Compute builds the trial balance for a tenant's fiscal period
func (s *TrialBalanceService) Compute(ctx context.Context, tenantID uuid.UUID, fiscalYear, fiscalPeriod int) (*domainprojection.TrialBalance, error) {
	buckets, err := s.balances.FindForPeriod(ctx, tenantID, fiscalYear, fiscalPeriod)
	if err != nil {
		return nil, err
	}
	totalDebits, totalCredits, rows, err := s.balances.SumForPeriod(ctx, tenantID, fiscalYear, fiscalPeriod)
	if err != nil {
		return nil, err
	}

	tb := &domainprojection.TrialBalance{
		TenantID:     tenantID,
		FiscalYear:   fiscalYear,
		FiscalPeriod: fiscalPeriod,
		CheckedAt:    time.Now().UTC(),
		TotalDebits:  totalDebits,
		TotalCredits: totalCredits,
		AccountCount: rows,
		Rows:         make([]domainprojection.TrialBalanceRow, len(buckets)),
	}
	for i := range buckets {
		tb.Rows[i] = domainprojection.TrialBalanceRow{
			AccountID:    buckets[i].AccountID,
			Currency:     buckets[i].Currency,
			DebitAmount:  buckets[i].DebitAmount,
			CreditAmount: buckets[i].CreditAmount,
			Balance:      buckets[i].Balance,
		}
	}
	tb.Evaluate()

	if !tb.Status.IsBalanced() {
		s.logger.Error("trial balance out of balance",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("fiscal_year", fiscalYear),
			zap.Int("fiscal_period", fiscalPeriod),
			zap.String("net_balance", tb.NetBalance.String()))
	}
	return tb, nil
}
