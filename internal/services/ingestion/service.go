// Package ingestion imports bank transactions in idempotent batches.
package ingestion

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"invoice-reconciliation-backend/internal/apperr"
	"invoice-reconciliation-backend/internal/models"
	"invoice-reconciliation-backend/internal/repository"
	"invoice-reconciliation-backend/internal/services/idempotency"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionInput is one transaction in an import request.
type TransactionInput struct {
	ExternalID  *string         `json:"external_id"`
	PostedAt    time.Time       `json:"posted_at"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description *string         `json:"description"`
}

type IngestionService struct {
	transactionRepo *repository.BankTransactionRepository
	ledger          *idempotency.Ledger
	db              *gorm.DB
	logger          *slog.Logger
}

func NewIngestionService(
	transactionRepo *repository.BankTransactionRepository,
	ledger *idempotency.Ledger,
	logger *slog.Logger,
) *IngestionService {
	return &IngestionService{
		transactionRepo: transactionRepo,
		ledger:          ledger,
		db:              transactionRepo.DB(),
		logger:          logger,
	}
}

// Import persists a batch of transactions, all or nothing. The returned bool
// reports whether the batch was answered from the idempotency ledger instead
// of being re-imported.
//
// With an idempotency key, a retry of the same payload returns the original
// rows; the same key with a different payload is a conflict. Regardless of
// the key, an item whose (tenant, external_id) already exists reuses the
// stored row rather than creating a duplicate.
func (s *IngestionService) Import(tenantID uuid.UUID, items []TransactionInput, idempotencyKey string) ([]models.BankTransaction, bool, error) {
	normalized, err := normalizeAll(items)
	if err != nil {
		return nil, false, err
	}
	hash := payloadHash(normalized)

	if idempotencyKey != "" {
		replayed, hit, err := s.replayFromLedger(tenantID, idempotencyKey, hash)
		if err != nil {
			return nil, false, err
		}
		if hit {
			return replayed, true, nil
		}
	}

	results := make([]models.BankTransaction, 0, len(normalized))
	err = s.db.Transaction(func(dbtx *gorm.DB) error {
		for _, item := range normalized {
			row, err := s.importOne(dbtx, tenantID, item)
			if err != nil {
				return err
			}
			results = append(results, *row)
		}
		return nil
	})
	if err != nil {
		return nil, false, apperr.Persistencef("importing transactions: %v", err)
	}

	if idempotencyKey != "" {
		ids := make([]uuid.UUID, len(results))
		for i := range results {
			ids[i] = results[i].ID
		}
		// The import is already committed; a ledger failure only costs the
		// replay shortcut on a future retry.
		if err := s.ledger.Record(tenantID, idempotencyKey, hash, ids); err != nil {
			s.logger.Warn("failed to store idempotency record",
				"tenant_id", tenantID, "idempotency_key", idempotencyKey, "error", err)
		}
	}
	return results, false, nil
}

// Get returns one of the tenant's transactions.
func (s *IngestionService) Get(tenantID, id uuid.UUID) (*models.BankTransaction, error) {
	tx, err := s.transactionRepo.GetByID(tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("bank transaction not found")
		}
		return nil, apperr.Persistencef("loading transaction: %v", err)
	}
	return tx, nil
}

// List returns the tenant's transactions, newest posted first.
func (s *IngestionService) List(tenantID uuid.UUID, skip, limit int) ([]models.BankTransaction, error) {
	txs, err := s.transactionRepo.List(tenantID, skip, limit)
	if err != nil {
		return nil, apperr.Persistencef("listing transactions: %v", err)
	}
	return txs, nil
}

// replayFromLedger answers a keyed request from the ledger when possible.
// A key recorded against a different payload is a conflict. A matching entry
// replays only while every stored transaction still exists; otherwise the
// import runs again and external_id reuse keeps it safe.
func (s *IngestionService) replayFromLedger(tenantID uuid.UUID, key, hash string) ([]models.BankTransaction, bool, error) {
	entry, err := s.ledger.Find(tenantID, key)
	if err != nil {
		return nil, false, apperr.Persistencef("checking idempotency key: %v", err)
	}
	if entry == nil {
		return nil, false, nil
	}
	if entry.PayloadHash != hash {
		return nil, false, apperr.Conflictf("idempotency key reused with different payload")
	}

	rows, err := s.transactionRepo.FindByIDs(tenantID, entry.TransactionIDs)
	if err != nil {
		return nil, false, apperr.Persistencef("resolving stored transactions: %v", err)
	}
	if len(rows) != len(entry.TransactionIDs) {
		return nil, false, nil
	}

	byID := make(map[uuid.UUID]models.BankTransaction, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	ordered := make([]models.BankTransaction, 0, len(entry.TransactionIDs))
	for _, id := range entry.TransactionIDs {
		ordered = append(ordered, byID[id])
	}
	return ordered, true, nil
}

func (s *IngestionService) importOne(dbtx *gorm.DB, tenantID uuid.UUID, item TransactionInput) (*models.BankTransaction, error) {
	if item.ExternalID != nil {
		var existing models.BankTransaction
		err := dbtx.First(&existing, "tenant_id = ? AND external_id = ?", tenantID, *item.ExternalID).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	row := models.BankTransaction{
		ID:          uuid.New(),
		TenantID:    tenantID,
		ExternalID:  item.ExternalID,
		PostedAt:    item.PostedAt,
		Amount:      item.Amount,
		Currency:    item.Currency,
		Description: item.Description,
	}
	result := dbtx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 && item.ExternalID != nil {
		// A concurrent import won the (tenant, external_id) race between our
		// lookup and insert; adopt its row.
		if err := dbtx.First(&row, "tenant_id = ? AND external_id = ?", tenantID, *item.ExternalID).Error; err != nil {
			return nil, err
		}
	}
	return &row, nil
}

// normalizeAll validates every item before anything is written and returns
// normalized copies: currency trimmed and upper-cased, optional strings
// trimmed. The normalized form is also what gets hashed, so retries that
// differ only in whitespace or currency casing still replay.
func normalizeAll(items []TransactionInput) ([]TransactionInput, error) {
	out := make([]TransactionInput, len(items))
	for i, item := range items {
		if !item.Amount.IsPositive() {
			return nil, apperr.Validationf("transaction %d: amount must be positive", i)
		}
		if item.PostedAt.IsZero() {
			return nil, apperr.Validationf("transaction %d: posted_at is required", i)
		}

		currency := strings.ToUpper(strings.TrimSpace(item.Currency))
		if currency == "" {
			return nil, apperr.Validationf("transaction %d: currency is required", i)
		}

		externalID, ok := normalizeOptional(item.ExternalID)
		if !ok {
			return nil, apperr.Validationf("transaction %d: external_id must not be blank", i)
		}
		description, ok := normalizeOptional(item.Description)
		if !ok {
			return nil, apperr.Validationf("transaction %d: description must not be blank", i)
		}

		out[i] = TransactionInput{
			ExternalID:  externalID,
			PostedAt:    item.PostedAt,
			Amount:      item.Amount,
			Currency:    currency,
			Description: description,
		}
	}
	return out, nil
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
