package handler

import (
	"net/http"

	"invoice-reconciliation-backend/internal/services/explain"
	"invoice-reconciliation-backend/internal/services/ingestion"
	"invoice-reconciliation-backend/internal/services/invoices"
	"invoice-reconciliation-backend/internal/services/matching"
	"invoice-reconciliation-backend/internal/services/reconciliation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReconciliationHandler struct {
	service   *reconciliation.ReconciliationService
	invoices  *invoices.InvoiceService
	ingestion *ingestion.IngestionService
	explainer *explain.Explainer
}

func NewReconciliationHandler(
	service *reconciliation.ReconciliationService,
	invoiceService *invoices.InvoiceService,
	ingestionService *ingestion.IngestionService,
	explainer *explain.Explainer,
) *ReconciliationHandler {
	return &ReconciliationHandler{
		service:   service,
		invoices:  invoiceService,
		ingestion: ingestionService,
		explainer: explainer,
	}
}

// Run executes a reconciliation pass over the tenant's open invoices and
// unmatched transactions.
func (h *ReconciliationHandler) Run(c *gin.Context) {
	result, err := h.service.Reconcile(tenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Explain recomputes the score for one invoice/transaction pair and returns
// a human-readable explanation. The pair does not have to be a proposed
// match; any two records the tenant owns can be compared.
func (h *ReconciliationHandler) Explain(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Query("invoice_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice_id"})
		return
	}
	transactionID, err := uuid.Parse(c.Query("transaction_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction_id"})
		return
	}

	tenant := tenantID(c)
	invoice, err := h.invoices.Get(tenant, invoiceID)
	if err != nil {
		respondError(c, err)
		return
	}
	tx, err := h.ingestion.Get(tenant, transactionID)
	if err != nil {
		respondError(c, err)
		return
	}

	score, _ := matching.Score(invoice, tx)
	explanation := h.explainer.Explain(c.Request.Context(), invoice, tx, score)

	c.JSON(http.StatusOK, gin.H{
		"invoice_id":     invoiceID,
		"transaction_id": transactionID,
		"score":          score,
		"explanation":    explanation,
	})
}

// Confirm promotes a proposed match and closes its invoice.
func (h *ReconciliationHandler) Confirm(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("matchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match ID"})
		return
	}

	match, err := h.service.ConfirmMatch(tenantID(c), matchID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}
