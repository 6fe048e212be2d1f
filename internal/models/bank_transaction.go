package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankTransaction rows are immutable once ingested. (tenant_id, external_id)
// is the natural idempotency key when the bank supplies an external id;
// multiple NULL external ids never collide.
type BankTransaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:ux_bank_transactions_tenant_external,priority:1" json:"tenant_id"`
	ExternalID  *string         `gorm:"uniqueIndex:ux_bank_transactions_tenant_external,priority:2" json:"external_id"`
	PostedAt    time.Time       `gorm:"index" json:"posted_at"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount"`
	Currency    string          `json:"currency"`
	Description *string         `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}
