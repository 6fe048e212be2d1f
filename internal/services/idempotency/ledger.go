// Package idempotency records the outcome of keyed import requests so a
// retried request can be answered from the ledger instead of re-running.
package idempotency

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"invoice-reconciliation-backend/internal/models"
	"invoice-reconciliation-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Record is a decoded ledger entry: the hash of the payload the key was
// first used with, and the ids the original request produced, in order.
type Record struct {
	PayloadHash    string
	TransactionIDs []uuid.UUID
}

type resultData struct {
	TransactionIDs []uuid.UUID `json:"transaction_ids"`
}

type Ledger struct {
	repo   *repository.IdempotencyRepository
	logger *slog.Logger
}

func NewLedger(repo *repository.IdempotencyRepository, logger *slog.Logger) *Ledger {
	return &Ledger{repo: repo, logger: logger}
}

// Find returns the ledger entry for (tenant, key), or nil when the key has
// never been used.
func (l *Ledger) Find(tenantID uuid.UUID, key string) (*Record, error) {
	stored, err := l.repo.Get(tenantID, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading idempotency record: %w", err)
	}

	var data resultData
	if len(stored.ResultData) > 0 {
		if err := json.Unmarshal(stored.ResultData, &data); err != nil {
			return nil, fmt.Errorf("decoding idempotency result: %w", err)
		}
	}
	return &Record{PayloadHash: stored.PayloadHash, TransactionIDs: data.TransactionIDs}, nil
}

// Record writes a ledger entry. Hitting the (tenant, key) uniqueness
// constraint is not an error: it means a concurrent request already wrote the
// entry, or we re-imported a batch whose stored rows had vanished. When the
// existing entry carries the same hash its result ids are refreshed; a
// different hash means the first writer wins and we only complain in the log.
func (l *Ledger) Record(tenantID uuid.UUID, key, payloadHash string, txIDs []uuid.UUID) error {
	encoded, err := json.Marshal(resultData{TransactionIDs: txIDs})
	if err != nil {
		return fmt.Errorf("encoding idempotency result: %w", err)
	}

	record := &models.IdempotencyRecord{
		ID:             uuid.New(),
		TenantID:       tenantID,
		IdempotencyKey: key,
		PayloadHash:    payloadHash,
		ResultData:     datatypes.JSON(encoded),
	}
	err = l.repo.Create(record)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("storing idempotency record: %w", err)
	}

	existing, err := l.repo.Get(tenantID, key)
	if err != nil {
		return fmt.Errorf("re-reading idempotency record: %w", err)
	}
	if existing.PayloadHash != payloadHash {
		l.logger.Warn("concurrent idempotency writes disagree on payload hash",
			"tenant_id", tenantID, "idempotency_key", key)
		return nil
	}
	if err := l.repo.UpdateResult(tenantID, key, datatypes.JSON(encoded)); err != nil {
		return fmt.Errorf("refreshing idempotency result: %w", err)
	}
	return nil
}
