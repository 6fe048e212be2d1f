// Package vendors manages the per-tenant vendor registry. Vendor names feed
// the text term of the match scorer, so keeping them clean matters more than
// their size suggests.
package vendors

import (
	"errors"
	"strings"

	"invoice-reconciliation-backend/internal/apperr"
	"invoice-reconciliation-backend/internal/models"
	"invoice-reconciliation-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VendorService struct {
	repo *repository.VendorRepository
}

func NewVendorService(repo *repository.VendorRepository) *VendorService {
	return &VendorService{repo: repo}
}

// Create registers a vendor. Names are trimmed and unique within the tenant;
// the same name under another tenant is a different vendor.
func (s *VendorService) Create(tenantID uuid.UUID, name string) (*models.Vendor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("vendor name must not be empty")
	}

	if _, err := s.repo.FindByName(tenantID, name); err == nil {
		return nil, apperr.Conflictf("vendor with name %q already exists for this tenant", name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Persistencef("checking vendor name: %v", err)
	}

	vendor := &models.Vendor{ID: uuid.New(), TenantID: tenantID, Name: name}
	if err := s.repo.Create(vendor); err != nil {
		// Unique index backstop for the window between check and insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflictf("vendor with name %q already exists for this tenant", name)
		}
		return nil, apperr.Persistencef("creating vendor: %v", err)
	}
	return vendor, nil
}

func (s *VendorService) Get(tenantID, id uuid.UUID) (*models.Vendor, error) {
	vendor, err := s.repo.GetByID(tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("vendor not found")
		}
		return nil, apperr.Persistencef("loading vendor: %v", err)
	}
	return vendor, nil
}

func (s *VendorService) List(tenantID uuid.UUID, skip, limit int) ([]models.Vendor, error) {
	vendors, err := s.repo.List(tenantID, skip, limit)
	if err != nil {
		return nil, apperr.Persistencef("listing vendors: %v", err)
	}
	return vendors, nil
}
