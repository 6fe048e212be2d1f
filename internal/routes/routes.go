// Package routes is the composition root: repositories, services, and
// handlers are wired here, shared by main and the API tests.
package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"invoice-reconciliation-backend/internal/config"
	handler "invoice-reconciliation-backend/internal/handlers"
	"invoice-reconciliation-backend/internal/repository"
	"invoice-reconciliation-backend/internal/services/explain"
	"invoice-reconciliation-backend/internal/services/idempotency"
	"invoice-reconciliation-backend/internal/services/ingestion"
	"invoice-reconciliation-backend/internal/services/invoices"
	"invoice-reconciliation-backend/internal/services/reconciliation"
	"invoice-reconciliation-backend/internal/services/tenants"
	"invoice-reconciliation-backend/internal/services/vendors"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, logger *slog.Logger) {
	tenantRepo := repository.NewTenantRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	transactionRepo := repository.NewBankTransactionRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	ledger := idempotency.NewLedger(idempotencyRepo, logger)
	tenantService := tenants.NewTenantService(tenantRepo)
	vendorService := vendors.NewVendorService(vendorRepo)
	invoiceService := invoices.NewInvoiceService(invoiceRepo, vendorRepo)
	ingestionService := ingestion.NewIngestionService(transactionRepo, ledger, logger)
	reconciliationService := reconciliation.NewReconciliationService(invoiceRepo, transactionRepo, matchRepo)

	var aiClient explain.Client
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		aiClient = explain.NewOpenAIClient(cfg.AI.APIKey)
	}
	explainer := explain.NewExplainer(cfg.AI, aiClient, logger)

	tenantHandler := handler.NewTenantHandler(tenantService)
	vendorHandler := handler.NewVendorHandler(vendorService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	transactionHandler := handler.NewBankTransactionHandler(ingestionService)
	reconciliationHandler := handler.NewReconciliationHandler(
		reconciliationService, invoiceService, ingestionService, explainer)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api.POST("/tenants", tenantHandler.Create)
	api.GET("/tenants", tenantHandler.List)
	api.GET("/tenants/:tenantId", tenantHandler.Get)

	// Everything below is tenant-scoped and guarded.
	tenant := api.Group("/tenants/:tenantId", handler.RequireTenant(tenantService))

	tenant.POST("/vendors", vendorHandler.Create)
	tenant.GET("/vendors", vendorHandler.List)

	tenant.POST("/invoices", invoiceHandler.Create)
	tenant.GET("/invoices", invoiceHandler.List)
	tenant.GET("/invoices/:invoiceId", invoiceHandler.Get)
	tenant.DELETE("/invoices/:invoiceId", invoiceHandler.Delete)

	tenant.POST("/bank-transactions/import", transactionHandler.Import)
	tenant.GET("/bank-transactions", transactionHandler.List)

	recon := tenant.Group("/reconcile")
	recon.POST("", reconciliationHandler.Run)
	recon.GET("/explain", reconciliationHandler.Explain)
	recon.POST("/matches/:matchId/confirm", reconciliationHandler.Confirm)
}
