package persistence

import (
	"context"
	"errors"

	"github.com/airp/ledger/internal/domain/projection"
	"github.com/airp/ledger/internal/domain/shared"
	"github.com/airp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormJournalEntryRepository implements projection.MaterializedEntryRepository using GORM
type GormJournalEntryRepository struct {
	db *gorm.DB
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

// SaveEntry upserts the header and its lines in one transaction. Inserts
// conflict-do-nothing on the entry id, so redelivered events leave the
// first write untouched.
func (r *GormJournalEntryRepository) SaveEntry(ctx context.Context, entry *projection.MaterializedEntry, lines []projection.MaterializedLine) error {
	headerModel := models.JournalEntryModelFromDomain(entry)
	lineModels := make([]models.JournalEntryLineModel, len(lines))
	for i := range lines {
		lineModels[i] = *models.JournalEntryLineModelFromDomain(&lines[i])
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(headerModel)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Entry already materialized, skip the lines too
			return nil
		}
		if len(lineModels) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&lineModels).Error
	})
}

// FindByID loads a materialized entry header
func (r *GormJournalEntryRepository) FindByID(ctx context.Context, tenantID, entryID uuid.UUID) (*projection.MaterializedEntry, error) {
	var model models.JournalEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entry_id = ?", tenantID, entryID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
