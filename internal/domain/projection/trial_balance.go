package projection

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrialBalanceStatus represents the result status of a trial balance check
type TrialBalanceStatus string

const (
	TrialBalanceStatusBalanced   TrialBalanceStatus = "BALANCED"
	TrialBalanceStatusUnbalanced TrialBalanceStatus = "UNBALANCED"
)

// IsBalanced returns true if the trial balance is balanced
func (s TrialBalanceStatus) IsBalanced() bool {
	return s == TrialBalanceStatusBalanced
}

// TrialBalanceEpsilon is the drift tolerated before a period is reported
// unbalanced. Anything beyond it is a data-integrity incident, not a
// display issue.
var TrialBalanceEpsilon = decimal.RequireFromString("0.01")

// TrialBalanceRow is one account's accumulated position within the period
type TrialBalanceRow struct {
	AccountID    uuid.UUID       `json:"account_id"`
	Currency     string          `json:"currency"`
	DebitAmount  decimal.Decimal `json:"debit_amount"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	Balance      decimal.Decimal `json:"balance"`
}

// TrialBalance aggregates a tenant's GL balances for one fiscal period
type TrialBalance struct {
	TenantID     uuid.UUID          `json:"tenant_id"`
	FiscalYear   int                `json:"fiscal_year"`
	FiscalPeriod int                `json:"fiscal_period"`
	CheckedAt    time.Time          `json:"checked_at"`
	Status       TrialBalanceStatus `json:"status"`
	TotalDebits  decimal.Decimal    `json:"total_debits"`
	TotalCredits decimal.Decimal    `json:"total_credits"`
	NetBalance   decimal.Decimal    `json:"net_balance"` // debits - credits
	AccountCount int64              `json:"account_count"`
	Rows         []TrialBalanceRow  `json:"rows,omitempty"`
}

// Evaluate sets Status and NetBalance from the accumulated totals
func (t *TrialBalance) Evaluate() {
	t.NetBalance = t.TotalDebits.Sub(t.TotalCredits)
	if t.NetBalance.Abs().GreaterThan(TrialBalanceEpsilon) {
		t.Status = TrialBalanceStatusUnbalanced
	} else {
		t.Status = TrialBalanceStatusBalanced
	}
}
