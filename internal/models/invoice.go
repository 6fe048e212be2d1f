package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is a closed enumeration; transitions happen only through
// match confirmation (open -> matched). Nothing in this service moves an
// invoice to paid.
type InvoiceStatus string

const (
	InvoiceStatusOpen    InvoiceStatus = "open"
	InvoiceStatusMatched InvoiceStatus = "matched"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusOpen, InvoiceStatusMatched, InvoiceStatusPaid:
		return true
	}
	return false
}

type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:ux_invoices_tenant_number,priority:1" json:"tenant_id"`
	VendorID      *uuid.UUID      `gorm:"type:uuid;index" json:"vendor_id"`
	InvoiceNumber *string         `gorm:"uniqueIndex:ux_invoices_tenant_number,priority:2" json:"invoice_number"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount"`
	Currency      string          `json:"currency"`
	InvoiceDate   *time.Time      `json:"invoice_date"`
	Description   *string         `json:"description"`
	Status        InvoiceStatus   `gorm:"index" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`

	Vendor *Vendor `gorm:"foreignKey:VendorID" json:"-"`
}
