package main

import (
	"log"
	"log/slog"
	"time"

	"invoice-reconciliation-backend/internal/config"
	"invoice-reconciliation-backend/internal/models"
	"invoice-reconciliation-backend/internal/observability"
	"invoice-reconciliation-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cfg := config.Load()
	logger := observability.NewLogger(cfg.Logging)
	slog.SetDefault(logger)

	db := config.InitDB(cfg)

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.Vendor{},
		&models.Invoice{},
		&models.BankTransaction{},
		&models.Match{},
		&models.IdempotencyRecord{},
	); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, cfg, logger)

	logger.Info("starting server", "addr", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
