package handler

import (
	"net/http"

	"invoice-reconciliation-backend/internal/services/vendors"

	"github.com/gin-gonic/gin"
)

type VendorHandler struct {
	service *vendors.VendorService
}

func NewVendorHandler(service *vendors.VendorService) *VendorHandler {
	return &VendorHandler{service: service}
}

type createVendorRequest struct {
	Name string `json:"name"`
}

func (h *VendorHandler) Create(c *gin.Context) {
	var payload createVendorRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	vendor, err := h.service.Create(tenantID(c), payload.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

func (h *VendorHandler) List(c *gin.Context) {
	skip, limit := pagination(c)
	listed, err := h.service.List(tenantID(c), skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listed)
}
