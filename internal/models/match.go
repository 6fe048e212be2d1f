package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchStatus is a closed enumeration. The only transition this service
// performs is proposed -> confirmed; rejected exists for manual workflows
// outside the matching core and is never set automatically.
type MatchStatus string

const (
	MatchStatusProposed  MatchStatus = "proposed"
	MatchStatusConfirmed MatchStatus = "confirmed"
	MatchStatusRejected  MatchStatus = "rejected"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusProposed, MatchStatusConfirmed, MatchStatusRejected:
		return true
	}
	return false
}

// Match associates one invoice with one bank transaction. The unique index
// over (tenant_id, invoice_id, bank_transaction_id) is what makes
// reconciliation re-runs idempotent: a pair can only ever be proposed once.
type Match struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID          uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:ux_matches_tenant_pair,priority:1" json:"tenant_id"`
	InvoiceID         uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:ux_matches_tenant_pair,priority:2" json:"invoice_id"`
	BankTransactionID uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:ux_matches_tenant_pair,priority:3" json:"bank_transaction_id"`
	Score             decimal.Decimal `gorm:"type:numeric(5,2)" json:"score"`
	Status            MatchStatus     `gorm:"index" json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
}
