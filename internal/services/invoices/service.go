// Package invoices handles invoice creation and queries. Invoices enter the
// system open and leave the reconciliation pool only through match
// confirmation, so all this package has to guarantee is that records are
// clean on the way in.
package invoices

import (
	"errors"
	"strings"
	"time"

	"invoice-reconciliation-backend/internal/apperr"
	"invoice-reconciliation-backend/internal/models"
	"invoice-reconciliation-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateInput carries the caller-supplied invoice fields. Optional strings
// follow the same rule as ingestion: absent is fine, present but blank is not.
type CreateInput struct {
	VendorID      *uuid.UUID      `json:"vendor_id"`
	InvoiceNumber *string         `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	InvoiceDate   *time.Time      `json:"invoice_date"`
	Description   *string         `json:"description"`
}

type InvoiceService struct {
	repo       *repository.InvoiceRepository
	vendorRepo *repository.VendorRepository
}

func NewInvoiceService(repo *repository.InvoiceRepository, vendorRepo *repository.VendorRepository) *InvoiceService {
	return &InvoiceService{repo: repo, vendorRepo: vendorRepo}
}

// Create validates and persists a new open invoice. A vendor reference must
// resolve within the same tenant; invoice numbers are unique per tenant but
// invoices without a number never collide.
func (s *InvoiceService) Create(tenantID uuid.UUID, input CreateInput) (*models.Invoice, error) {
	if !input.Amount.IsPositive() {
		return nil, apperr.Validationf("amount must be positive")
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		return nil, apperr.Validationf("currency is required")
	}
	number, ok := normalizeOptional(input.InvoiceNumber)
	if !ok {
		return nil, apperr.Validationf("invoice_number must not be blank")
	}
	description, ok := normalizeOptional(input.Description)
	if !ok {
		return nil, apperr.Validationf("description must not be blank")
	}

	if input.VendorID != nil {
		if _, err := s.vendorRepo.GetByID(tenantID, *input.VendorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFoundf("vendor not found")
			}
			return nil, apperr.Persistencef("checking vendor: %v", err)
		}
	}

	if number != nil {
		if _, err := s.repo.FindByNumber(tenantID, *number); err == nil {
			return nil, apperr.Conflictf("invoice with number %q already exists for this tenant", *number)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Persistencef("checking invoice number: %v", err)
		}
	}

	invoice := &models.Invoice{
		ID:            uuid.New(),
		TenantID:      tenantID,
		VendorID:      input.VendorID,
		InvoiceNumber: number,
		Amount:        input.Amount,
		Currency:      currency,
		InvoiceDate:   input.InvoiceDate,
		Description:   description,
		Status:        models.InvoiceStatusOpen,
	}
	if err := s.repo.Create(invoice); err != nil {
		// Unique index backstop for the window between check and insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) && number != nil {
			return nil, apperr.Conflictf("invoice with number %q already exists for this tenant", *number)
		}
		return nil, apperr.Persistencef("creating invoice: %v", err)
	}
	return invoice, nil
}

// Get returns one invoice with its vendor loaded.
func (s *InvoiceService) Get(tenantID, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.repo.GetByID(tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("invoice not found")
		}
		return nil, apperr.Persistencef("loading invoice: %v", err)
	}
	return invoice, nil
}

func (s *InvoiceService) List(tenantID uuid.UUID, filter repository.InvoiceFilter, skip, limit int) ([]models.Invoice, error) {
	invoices, err := s.repo.List(tenantID, filter, skip, limit)
	if err != nil {
		return nil, apperr.Persistencef("listing invoices: %v", err)
	}
	return invoices, nil
}

func (s *InvoiceService) Delete(tenantID, id uuid.UUID) error {
	deleted, err := s.repo.Delete(tenantID, id)
	if err != nil {
		return apperr.Persistencef("deleting invoice: %v", err)
	}
	if !deleted {
		return apperr.NotFoundf("invoice not found")
	}
	return nil
}

// normalizeOptional trims an optional string. Absent is fine; present but
// blank is not.
func normalizeOptional(s *string) (*string, bool) {
	if s == nil {
		return nil, true
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil, false
	}
	return &trimmed, true
}
