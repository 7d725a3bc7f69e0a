package persistence

import (
	"context"
	"time"

	"github.com/airp/ledger/internal/domain/projection"
	"github.com/airp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAgingRepository implements projection.AgingRepository using GORM
type GormAgingRepository struct {
	db *gorm.DB
}

// NewGormAgingRepository creates a new GormAgingRepository
func NewGormAgingRepository(db *gorm.DB) *GormAgingRepository {
	return &GormAgingRepository{db: db}
}

// ReplaceForDate deletes prior rows for (tenant, side, asOf) and inserts the
// new snapshot in one transaction, so readers never see a partial snapshot.
func (r *GormAgingRepository) ReplaceForDate(ctx context.Context, tenantID uuid.UUID, side projection.SubledgerSide, asOf time.Time, records []projection.AgingRecord) error {
	day := asOf.Truncate(24 * time.Hour)
	recordModels := make([]models.AgingRecordModel, len(records))
	for i := range records {
		recordModels[i] = *models.AgingRecordModelFromDomain(&records[i])
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND side = ? AND as_of_date = ?", tenantID, string(side), day).
			Delete(&models.AgingRecordModel{}).Error; err != nil {
			return err
		}
		if len(recordModels) == 0 {
			return nil
		}
		return tx.Create(&recordModels).Error
	})
}

// FindLatest returns the most recent snapshot for a tenant and side
func (r *GormAgingRepository) FindLatest(ctx context.Context, tenantID uuid.UUID, side projection.SubledgerSide) ([]projection.AgingRecord, error) {
	var latest struct {
		AsOfDate *time.Time
	}
	if err := r.db.WithContext(ctx).
		Model(&models.AgingRecordModel{}).
		Select("MAX(as_of_date) AS as_of_date").
		Where("tenant_id = ? AND side = ?", tenantID, string(side)).
		Scan(&latest).Error; err != nil {
		return nil, err
	}
	if latest.AsOfDate == nil {
		return []projection.AgingRecord{}, nil
	}

	var recordModels []models.AgingRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND side = ? AND as_of_date = ?", tenantID, string(side), *latest.AsOfDate).
		Order("party_id ASC, invoice_id ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	records := make([]projection.AgingRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}
