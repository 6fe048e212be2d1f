package repository

import (
	"invoice-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

func (r *VendorRepository) Create(vendor *models.Vendor) error {
	return r.db.Create(vendor).Error
}

func (r *VendorRepository) GetByID(tenantID, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.First(&vendor, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *VendorRepository) FindByName(tenantID uuid.UUID, name string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.First(&vendor, "tenant_id = ? AND name = ?", tenantID, name).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *VendorRepository) List(tenantID uuid.UUID, offset, limit int) ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := r.db.Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&vendors).Error
	return vendors, err
}
