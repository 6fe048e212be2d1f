package repository

import (
	"invoice-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Create(tenant *models.Tenant) error {
	return r.db.Create(tenant).Error
}

func (r *TenantRepository) GetByID(id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.First(&tenant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// FindByName does an exact, case-sensitive lookup.
func (r *TenantRepository) FindByName(name string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.First(&tenant, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *TenantRepository) List(offset, limit int) ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := r.db.Order("created_at ASC").Offset(offset).Limit(limit).Find(&tenants).Error
	return tenants, err
}

func (r *TenantRepository) Exists(id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.Tenant{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
