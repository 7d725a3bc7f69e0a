package masterdata

import (
	"context"

	"github.com/google/uuid"
)

// NormalSide is the normal-balance side of an account
type NormalSide string

const (
	NormalSideDebit  NormalSide = "DEBIT"
	NormalSideCredit NormalSide = "CREDIT"
)

// IsValid checks if the side is a valid NormalSide
func (s NormalSide) IsValid() bool {
	return s == NormalSideDebit || s == NormalSideCredit
}

// ControlType marks an account as a sub-ledger control account
type ControlType string

const (
	ControlTypeNone ControlType = ""
	// ControlTypeAP requires a vendor dimension on every posted line
	ControlTypeAP ControlType = "AP"
	// ControlTypeAR requires a customer dimension on every posted line
	ControlTypeAR ControlType = "AR"
)

// AccountType is the broad classification of an account
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// AccountStatus is the lifecycle status of an account
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
)

// Account is one row of the chart of accounts. Read-mostly; owned by master-data.
type Account struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Code        string
	Name        string
	Type        AccountType
	NormalSide  NormalSide
	ControlType ControlType
	Status      AccountStatus
}

// IsActive returns true if the account can be posted to
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// IsControlAccount returns true for AP/AR control accounts
func (a *Account) IsControlAccount() bool {
	return a.ControlType == ControlTypeAP || a.ControlType == ControlTypeAR
}

// AccountLookup resolves account codes for validation and projection.
type AccountLookup interface {
	// FindByCode resolves an account code within a tenant.
	// Returns shared.ErrNotFound when the code is unknown.
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Account, error)
}

// AccountRepository is the full read surface over the chart of accounts
type AccountRepository interface {
	AccountLookup
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// FindAllForTenant lists accounts ordered by code. activeOnly limits
	// the result to postable accounts.
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]Account, error)
	FindByType(ctx context.Context, tenantID uuid.UUID, accountType AccountType) ([]Account, error)
}
