package repository

import (
	"invoice-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BankTransactionRepository struct {
	db *gorm.DB
}

func NewBankTransactionRepository(db *gorm.DB) *BankTransactionRepository {
	return &BankTransactionRepository{db: db}
}

// Expose DB for services that need transactional work
func (r *BankTransactionRepository) DB() *gorm.DB {
	return r.db
}

func (r *BankTransactionRepository) GetByID(tenantID, id uuid.UUID) (*models.BankTransaction, error) {
	var tx models.BankTransaction
	if err := r.db.First(&tx, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *BankTransactionRepository) List(tenantID uuid.UUID, offset, limit int) ([]models.BankTransaction, error) {
	var txs []models.BankTransaction
	err := r.db.Where("tenant_id = ?", tenantID).
		Order("posted_at DESC").
		Offset(offset).Limit(limit).
		Find(&txs).Error
	return txs, err
}

// FindByIDs returns the subset of ids that still exist for the tenant.
// Used to re-resolve an idempotency record's stored result on replay.
func (r *BankTransactionRepository) FindByIDs(tenantID uuid.UUID, ids []uuid.UUID) ([]models.BankTransaction, error) {
	var txs []models.BankTransaction
	if len(ids) == 0 {
		return txs, nil
	}
	err := r.db.Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&txs).Error
	return txs, err
}

// FindUnmatched returns transactions with no CONFIRMED match. Proposed-only
// matches keep a transaction in the pool. Ordered by (posted_at, id) so a
// score tie always resolves to the same transaction across runs.
func (r *BankTransactionRepository) FindUnmatched(tenantID uuid.UUID) ([]models.BankTransaction, error) {
	confirmed := r.db.Model(&models.Match{}).
		Select("bank_transaction_id").
		Where("tenant_id = ? AND status = ?", tenantID, models.MatchStatusConfirmed)

	var txs []models.BankTransaction
	err := r.db.Where("tenant_id = ? AND id NOT IN (?)", tenantID, confirmed).
		Order("posted_at ASC, id ASC").
		Find(&txs).Error
	return txs, err
}
