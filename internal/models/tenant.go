package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the isolation boundary: every other entity belongs to exactly
// one tenant. Names are unique case-sensitively.
type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
