package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IdempotencyRecord pins a client-supplied idempotency key to the sha256 of
// the payload it was first used with, plus the ids the import produced.
// Once written, the stored hash is the source of truth for replay-vs-conflict
// decisions and never changes; only the result ids may be refreshed when the
// rows they point at have been deleted and re-imported.
type IdempotencyRecord struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID       uuid.UUID      `gorm:"type:uuid;index;uniqueIndex:ux_idempotency_tenant_key,priority:1" json:"tenant_id"`
	IdempotencyKey string         `gorm:"uniqueIndex:ux_idempotency_tenant_key,priority:2" json:"idempotency_key"`
	PayloadHash    string         `json:"payload_hash"`
	ResultData     datatypes.JSON `json:"result_data"`
	CreatedAt      time.Time      `json:"created_at"`
}
