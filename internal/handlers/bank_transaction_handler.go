package handler

import (
	"net/http"

	"invoice-reconciliation-backend/internal/services/ingestion"

	"github.com/gin-gonic/gin"
)

type BankTransactionHandler struct {
	service *ingestion.IngestionService
}

func NewBankTransactionHandler(service *ingestion.IngestionService) *BankTransactionHandler {
	return &BankTransactionHandler{service: service}
}

type importRequest struct {
	Transactions   []ingestion.TransactionInput `json:"transactions"`
	IdempotencyKey string                       `json:"idempotency_key"`
}

// Import ingests a batch of transactions. The idempotency key is read from
// the Idempotency-Key header; the body field is a fallback for clients that
// cannot set headers. Replays answer 201 with the original rows.
func (h *BankTransactionHandler) Import(c *gin.Context) {
	var payload importRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	key := c.GetHeader("Idempotency-Key")
	if key == "" {
		key = payload.IdempotencyKey
	}

	created, _, err := h.service.Import(tenantID(c), payload.Transactions, key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BankTransactionHandler) List(c *gin.Context) {
	skip, limit := pagination(c)
	listed, err := h.service.List(tenantID(c), skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listed)
}
