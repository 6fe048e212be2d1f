package handler

import (
	"errors"
	"net/http"

	"invoice-reconciliation-backend/internal/apperr"
	"invoice-reconciliation-backend/internal/services/tenants"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const tenantIDKey = "tenantID"

// RequireTenant resolves the :tenantId path parameter and rejects the request
// before any tenant-scoped handler runs. Handlers behind it read the id with
// tenantID(c) and can assume the tenant exists.
func RequireTenant(service *tenants.TenantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("tenantId"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid tenant ID"})
			return
		}
		if err := service.VerifyExists(id); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
			} else {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
			return
		}
		c.Set(tenantIDKey, id)
		c.Next()
	}
}

func tenantID(c *gin.Context) uuid.UUID {
	return c.MustGet(tenantIDKey).(uuid.UUID)
}
