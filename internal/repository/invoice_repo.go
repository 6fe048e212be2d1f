package repository

import (
	"time"

	"invoice-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Expose DB for services that need transactional work
func (r *InvoiceRepository) DB() *gorm.DB {
	return r.db
}

// InvoiceFilter holds the optional list filters; nil fields are skipped.
type InvoiceFilter struct {
	Status    *models.InvoiceStatus
	VendorID  *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
	AmountMin *decimal.Decimal
	AmountMax *decimal.Decimal
}

func (r *InvoiceRepository) Create(invoice *models.Invoice) error {
	return r.db.Create(invoice).Error
}

func (r *InvoiceRepository) GetByID(tenantID, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Preload("Vendor").First(&invoice, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) FindByNumber(tenantID uuid.UUID, number string) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.First(&invoice, "tenant_id = ? AND invoice_number = ?", tenantID, number).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// List applies the optional filters on top of the tenant scope.
func (r *InvoiceRepository) List(tenantID uuid.UUID, filter InvoiceFilter, offset, limit int) ([]models.Invoice, error) {
	query := r.db.Model(&models.Invoice{}).Where("tenant_id = ?", tenantID)

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.DateFrom != nil {
		query = query.Where("invoice_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("invoice_date <= ?", *filter.DateTo)
	}
	if filter.AmountMin != nil {
		query = query.Where("amount >= ?", *filter.AmountMin)
	}
	if filter.AmountMax != nil {
		query = query.Where("amount <= ?", *filter.AmountMax)
	}

	var invoices []models.Invoice
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&invoices).Error
	return invoices, err
}

// FindOpen returns the tenant's reconciliation pool: every invoice still open,
// in a stable order so repeated runs walk them identically. Vendors are
// preloaded because the scorer folds the vendor name into its text comparison.
func (r *InvoiceRepository) FindOpen(tenantID uuid.UUID) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Preload("Vendor").
		Where("tenant_id = ? AND status = ?", tenantID, models.InvoiceStatusOpen).
		Order("created_at ASC, id ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *InvoiceRepository) Delete(tenantID, id uuid.UUID) (bool, error) {
	result := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&models.Invoice{})
	return result.RowsAffected > 0, result.Error
}
