package models

import (
	"time"

	"github.com/google/uuid"
)

type Vendor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;index;uniqueIndex:ux_vendors_tenant_name,priority:1" json:"tenant_id"`
	Name      string    `gorm:"uniqueIndex:ux_vendors_tenant_name,priority:2" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
