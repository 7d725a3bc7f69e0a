package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/airp/ledger/internal/domain/projection"
	"github.com/airp/ledger/internal/domain/shared"
	"github.com/airp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOpenInvoiceRepository implements projection.OpenInvoiceRepository using GORM
type GormOpenInvoiceRepository struct {
	db *gorm.DB
}

// NewGormOpenInvoiceRepository creates a new GormOpenInvoiceRepository
func NewGormOpenInvoiceRepository(db *gorm.DB) *GormOpenInvoiceRepository {
	return &GormOpenInvoiceRepository{db: db}
}

// Upsert records or refreshes an open invoice, keyed by invoice id
func (r *GormOpenInvoiceRepository) Upsert(ctx context.Context, invoice *projection.OpenInvoice) error {
	model := models.OpenInvoiceModelFromDomain(invoice)
	model.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "invoice_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"gross_amount", "outstanding", "due_date", "closed", "updated_at"}),
		}).
		Create(model).Error
}

// ApplyPayment reduces the outstanding amount under a row lock, closing the
// invoice when nothing remains outstanding.
func (r *GormOpenInvoiceRepository) ApplyPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.OpenInvoiceModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
			First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		model.Outstanding = model.Outstanding.Sub(amount)
		if !model.Outstanding.IsPositive() {
			model.Outstanding = decimal.Zero
			model.Closed = true
		}
		model.UpdatedAt = time.Now().UTC()
		return tx.Save(&model).Error
	})
}

// FindOpenForTenant returns open invoices for one sub-ledger side
func (r *GormOpenInvoiceRepository) FindOpenForTenant(ctx context.Context, tenantID uuid.UUID, side projection.SubledgerSide) ([]projection.OpenInvoice, error) {
	var invoiceModels []models.OpenInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND side = ? AND closed = false", tenantID, string(side)).
		Order("due_date ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]projection.OpenInvoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}
