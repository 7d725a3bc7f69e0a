package models

import (
	"time"

	"github.com/airp/ledger/internal/domain/masterdata"
	"github.com/google/uuid"
)

// AccountModel is the persistence model for the chart of accounts
type AccountModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_accounts_tenant_code,priority:1"`
	Code        string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_accounts_tenant_code,priority:2"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Type        string    `gorm:"type:varchar(20);not null"`
	NormalSide  string    `gorm:"type:varchar(10);not null"`
	ControlType string    `gorm:"type:varchar(10);not null;default:''"`
	Status      string    `gorm:"type:varchar(20);not null;default:ACTIVE"`
	CreatedAt   time.Time `gorm:"not null;default:now()"`
	UpdatedAt   time.Time `gorm:"not null;default:now()"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "chart_of_accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *masterdata.Account {
	return &masterdata.Account{
		ID:          m.ID,
		TenantID:    m.TenantID,
		Code:        m.Code,
		Name:        m.Name,
		Type:        masterdata.AccountType(m.Type),
		NormalSide:  masterdata.NormalSide(m.NormalSide),
		ControlType: masterdata.ControlType(m.ControlType),
		Status:      masterdata.AccountStatus(m.Status),
	}
}

// FromDomain populates the persistence model from a domain Account
func (m *AccountModel) FromDomain(a *masterdata.Account) {
	m.ID = a.ID
	m.TenantID = a.TenantID
	m.Code = a.Code
	m.Name = a.Name
	m.Type = string(a.Type)
	m.NormalSide = string(a.NormalSide)
	m.ControlType = string(a.ControlType)
	m.Status = string(a.Status)
}
