// Package explain turns a match score into a human-readable explanation.
// The deterministic explanation is always available and never fails; when AI
// is enabled, a model-written explanation is preferred and any failure on
// that path silently degrades to the deterministic one.
package explain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"invoice-reconciliation-backend/internal/config"
	"invoice-reconciliation-backend/internal/models"
	"invoice-reconciliation-backend/internal/services/matching"

	"github.com/shopspring/decimal"
)

const systemPrompt = "You are a financial reconciliation assistant."

type Explainer struct {
	cfg    config.AIConfig
	client Client
	logger *slog.Logger
}

// NewExplainer wires the explainer. client may be nil when AI is disabled.
func NewExplainer(cfg config.AIConfig, client Client, logger *slog.Logger) *Explainer {
	return &Explainer{cfg: cfg, client: client, logger: logger}
}

// Explain describes why the pair scored the way it did. The result is always
// usable text; AI output is best-effort only.
func (e *Explainer) Explain(ctx context.Context, invoice *models.Invoice, tx *models.BankTransaction, score decimal.Decimal) string {
	if e.cfg.Enabled && e.cfg.APIKey != "" && e.client != nil {
		text, err := e.aiExplanation(ctx, invoice, tx, score)
		if err == nil {
			return text
		}
		e.logger.Warn("ai explanation failed, using deterministic fallback", "error", err)
	}
	return Deterministic(invoice, tx, score)
}

func (e *Explainer) aiExplanation(ctx context.Context, invoice *models.Invoice, tx *models.BankTransaction, score decimal.Decimal) (string, error) {
	request := ChatCompletionRequest{
		Model:       e.cfg.Model,
		Temperature: 0.3,
		MaxTokens:   150,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(invoice, tx, score)},
		},
	}

	response, err := e.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	text := strings.TrimSpace(response.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("model returned a blank explanation")
	}
	return text, nil
}

// Deterministic lists the concrete factors behind a score without calling
// anything external.
func Deterministic(invoice *models.Invoice, tx *models.BankTransaction, score decimal.Decimal) string {
	var factors []string

	amountDiff := invoice.Amount.Sub(tx.Amount).Abs()
	switch {
	case amountDiff.IsZero():
		factors = append(factors, "The amounts match exactly")
	case amountDiff.LessThanOrEqual(matching.AmountTolerance):
		factors = append(factors, fmt.Sprintf("The amounts are within 1 cent (difference: %s)", amountDiff))
	default:
		factors = append(factors, fmt.Sprintf("Amount difference: %s", amountDiff))
	}

	if invoice.InvoiceDate != nil {
		days := daysBetween(*invoice.InvoiceDate, tx.PostedAt)
		switch {
		case days == 0:
			factors = append(factors, "dates match exactly")
		case days <= matching.DateToleranceDays:
			factors = append(factors, fmt.Sprintf("dates are within %d days", days))
		default:
			factors = append(factors, fmt.Sprintf("date difference: %d days", days))
		}
	}

	if invoice.Currency == tx.Currency {
		factors = append(factors, fmt.Sprintf("both in %s", invoice.Currency))
	}

	if invoice.Description != nil && tx.Description != nil {
		a := strings.ToLower(*invoice.Description)
		b := strings.ToLower(*tx.Description)
		if a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a)) {
			factors = append(factors, "descriptions show similarity")
		}
	}

	return fmt.Sprintf("Match score: %s/100. Factors: %s.", score, strings.Join(factors, "; "))
}

func buildPrompt(invoice *models.Invoice, tx *models.BankTransaction, score decimal.Decimal) string {
	vendorName := ""
	if invoice.Vendor != nil {
		vendorName = invoice.Vendor.Name
	}
	invoiceDate := ""
	if invoice.InvoiceDate != nil {
		invoiceDate = invoice.InvoiceDate.Format(time.RFC3339)
	}

	return fmt.Sprintf(`You are analyzing a potential match between an invoice and a bank transaction for reconciliation purposes.

Invoice:
- Amount: %s %s
- Date: %s
- Invoice Number: %s
- Description: %s
- Vendor: %s

Bank Transaction:
- Amount: %s %s
- Posted Date: %s
- Description: %s

Match Score: %s/100

Provide a brief explanation (2-4 sentences) of why this match was proposed and whether it appears to be a valid match. Be concise and focus on the key matching factors.`,
		invoice.Amount, invoice.Currency,
		orNotProvided(invoiceDate),
		orNotProvided(deref(invoice.InvoiceNumber)),
		orNotProvided(deref(invoice.Description)),
		orNotProvided(vendorName),
		tx.Amount, tx.Currency,
		tx.PostedAt.Format(time.RFC3339),
		orNotProvided(deref(tx.Description)),
		score,
	)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orNotProvided(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}

// daysBetween returns the whole days separating two instants, ignoring
// direction. Partial days truncate.
func daysBetween(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}
