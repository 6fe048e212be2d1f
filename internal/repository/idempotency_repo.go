package repository

import (
	"invoice-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type IdempotencyRepository struct {
	db *gorm.DB
}

func NewIdempotencyRepository(db *gorm.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

func (r *IdempotencyRepository) Get(tenantID uuid.UUID, key string) (*models.IdempotencyRecord, error) {
	var record models.IdempotencyRecord
	if err := r.db.First(&record, "tenant_id = ? AND idempotency_key = ?", tenantID, key).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *IdempotencyRepository) Create(record *models.IdempotencyRecord) error {
	return r.db.Create(record).Error
}

// UpdateResult replaces the stored result ids for an existing entry. The
// payload hash is deliberately not updatable.
func (r *IdempotencyRepository) UpdateResult(tenantID uuid.UUID, key string, result datatypes.JSON) error {
	return r.db.Model(&models.IdempotencyRecord{}).
		Where("tenant_id = ? AND idempotency_key = ?", tenantID, key).
		Update("result_data", result).Error
}
