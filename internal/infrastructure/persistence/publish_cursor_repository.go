package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/airp/ledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPublishCursorRepository persists dispatcher publish positions
type GormPublishCursorRepository struct {
	db *gorm.DB
}

// NewGormPublishCursorRepository creates a new GormPublishCursorRepository
func NewGormPublishCursorRepository(db *gorm.DB) *GormPublishCursorRepository {
	return &GormPublishCursorRepository{db: db}
}

// Get returns the last published sequence for a dispatcher, creating a zero
// cursor on first use.
func (r *GormPublishCursorRepository) Get(ctx context.Context, name string) (int64, error) {
	var model models.PublishCursorModel
	err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		model = models.PublishCursorModel{Name: name, LastSequence: 0, LastPublished: time.Now().UTC()}
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model).Error; err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return model.LastSequence, nil
}

// Advance moves the cursor forward. The guard keeps a stale writer from
// rewinding a cursor another instance already advanced.
func (r *GormPublishCursorRepository) Advance(ctx context.Context, name string, sequence int64) error {
	return r.db.WithContext(ctx).
		Model(&models.PublishCursorModel{}).
		Where("name = ? AND last_sequence < ?", name, sequence).
		Updates(map[string]interface{}{
			"last_sequence":  sequence,
			"last_published": time.Now().UTC(),
		}).Error
}

// Reset rewinds the cursor to fromSequence so the dispatcher republishes
// everything after it. Used by the redrive operation.
func (r *GormPublishCursorRepository) Reset(ctx context.Context, name string, fromSequence int64) error {
	return r.db.WithContext(ctx).
		Model(&models.PublishCursorModel{}).
		Where("name = ?", name).
		Updates(map[string]interface{}{
			"last_sequence":  fromSequence,
			"last_published": time.Now().UTC(),
		}).Error
}
