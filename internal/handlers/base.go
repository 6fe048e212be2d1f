// Package handler is the gin transport layer: request parsing, tenant
// resolution, and mapping the service error taxonomy onto HTTP statuses.
// No business rules live here.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"invoice-reconciliation-backend/internal/apperr"

	"github.com/gin-gonic/gin"
)

// respondError maps the error taxonomy onto HTTP statuses. Anything outside
// the taxonomy is a plain 500 that leaks nothing.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// pagination reads the skip/limit query parameters. Out-of-range values fall
// back to the defaults rather than erroring.
func pagination(c *gin.Context) (skip, limit int) {
	skip = intQuery(c, "skip", 0)
	if skip < 0 {
		skip = 0
	}
	limit = intQuery(c, "limit", 100)
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	return skip, limit
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
