// Package tenants manages the tenant registry. Tenants are the isolation
// boundary for everything else, so this package also provides the existence
// guard the transport layer runs before any tenant-scoped operation.
package tenants

import (
	"errors"
	"strings"

	"invoice-reconciliation-backend/internal/apperr"
	"invoice-reconciliation-backend/internal/models"
	"invoice-reconciliation-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TenantService struct {
	repo *repository.TenantRepository
}

func NewTenantService(repo *repository.TenantRepository) *TenantService {
	return &TenantService{repo: repo}
}

// Create registers a new tenant. Names are trimmed and must be unique.
// Comparison is case-sensitive: "Acme" and "ACME" are two tenants.
func (s *TenantService) Create(name string) (*models.Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("tenant name must not be empty")
	}

	if _, err := s.repo.FindByName(name); err == nil {
		return nil, apperr.Conflictf("tenant with name %q already exists", name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Persistencef("checking tenant name: %v", err)
	}

	tenant := &models.Tenant{ID: uuid.New(), Name: name}
	if err := s.repo.Create(tenant); err != nil {
		// Unique index backstop for the window between check and insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflictf("tenant with name %q already exists", name)
		}
		return nil, apperr.Persistencef("creating tenant: %v", err)
	}
	return tenant, nil
}

func (s *TenantService) Get(id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("tenant not found")
		}
		return nil, apperr.Persistencef("loading tenant: %v", err)
	}
	return tenant, nil
}

func (s *TenantService) List(skip, limit int) ([]models.Tenant, error) {
	tenants, err := s.repo.List(skip, limit)
	if err != nil {
		return nil, apperr.Persistencef("listing tenants: %v", err)
	}
	return tenants, nil
}

// VerifyExists is the guard tenant-scoped routes run behind.
func (s *TenantService) VerifyExists(id uuid.UUID) error {
	exists, err := s.repo.Exists(id)
	if err != nil {
		return apperr.Persistencef("checking tenant: %v", err)
	}
	if !exists {
		return apperr.NotFoundf("tenant not found")
	}
	return nil
}
