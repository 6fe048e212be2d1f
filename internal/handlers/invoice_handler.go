package handler

import (
	"fmt"
	"net/http"
	"time"

	"invoice-reconciliation-backend/internal/models"
	"invoice-reconciliation-backend/internal/repository"
	"invoice-reconciliation-backend/internal/services/invoices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceHandler struct {
	service *invoices.InvoiceService
}

func NewInvoiceHandler(service *invoices.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

func (h *InvoiceHandler) Create(c *gin.Context) {
	var payload invoices.CreateInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	invoice, err := h.service.Create(tenantID(c), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("invoiceId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID"})
		return
	}

	invoice, err := h.service.Get(tenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) List(c *gin.Context) {
	filter, err := parseInvoiceFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	skip, limit := pagination(c)
	listed, err := h.service.List(tenantID(c), filter, skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listed)
}

func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("invoiceId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID"})
		return
	}

	if err := h.service.Delete(tenantID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseInvoiceFilter reads the optional list filters off the query string.
func parseInvoiceFilter(c *gin.Context) (repository.InvoiceFilter, error) {
	var filter repository.InvoiceFilter

	if raw := c.Query("status"); raw != "" {
		status := models.InvoiceStatus(raw)
		if !status.Valid() {
			return filter, fmt.Errorf("invalid status %q", raw)
		}
		filter.Status = &status
	}
	if raw := c.Query("vendor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid vendor_id")
		}
		filter.VendorID = &id
	}
	if raw := c.Query("date_from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, fmt.Errorf("invalid date_from, want RFC3339")
		}
		filter.DateFrom = &ts
	}
	if raw := c.Query("date_to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, fmt.Errorf("invalid date_to, want RFC3339")
		}
		filter.DateTo = &ts
	}
	if raw := c.Query("amount_min"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid amount_min")
		}
		filter.AmountMin = &amount
	}
	if raw := c.Query("amount_max"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid amount_max")
		}
		filter.AmountMax = &amount
	}
	return filter, nil
}
