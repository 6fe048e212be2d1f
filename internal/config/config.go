// Package config centralizes environment-driven settings and database
// bootstrap. main loads .env first (godotenv), so plain os.Getenv is enough
// here.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port        int
	DatabaseURL string
	CORS        CORSConfig
	AI          AIConfig
	Logging     LoggingConfig
}

type CORSConfig struct {
	AllowOrigins []string
}

// AIConfig configures the optional explanation decorator. It is handed to the
// explainer at construction; nothing reads it as ambient state afterwards.
type AIConfig struct {
	Enabled bool
	APIKey  string
	Model   string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() Config {
	return Config{
		Port:        getEnvInt("PORT", 8080),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=invoice_reconciliation port=5432 sslmode=disable"),
		CORS: CORSConfig{
			AllowOrigins: splitEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
		},
		AI: AIConfig{
			Enabled: getEnvBool("AI_ENABLED", true),
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// InitDB opens the postgres connection. TranslateError is required: the
// ingestion and creation paths rely on gorm.ErrDuplicatedKey to convert
// unique-constraint violations into reuse/conflict outcomes.
func InitDB(cfg Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return db
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func splitEnv(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
