// Package matching scores invoice/bank-transaction pairs. The scorer is a
// pure function of its two inputs so a score can be recomputed at any time
// (reconciliation runs, the explain endpoint, tests) and always agree.
package matching

import (
	"fmt"
	"strings"
	"time"

	"invoice-reconciliation-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Scoring weights. The four components sum to 100; amount dominates on
// purpose, text similarity is only a tie-breaker.
var (
	ExactAmountWeight     = decimal.NewFromInt(50)
	AmountToleranceWeight = decimal.NewFromInt(30)
	DateProximityWeight   = decimal.NewFromInt(15)
	TextSimilarityWeight  = decimal.NewFromInt(5)

	// AmountTolerance is the largest absolute amount difference that still
	// earns partial credit.
	AmountTolerance = decimal.RequireFromString("0.01")

	// MinScoreThreshold is the floor below which a pair is not worth
	// proposing.
	MinScoreThreshold = decimal.NewFromInt(20)

	maxScore = decimal.NewFromInt(100)
)

// DateToleranceDays bounds the date-proximity window.
const DateToleranceDays = 3

// substringFloor is the minimum similarity granted when one text wholly
// contains the other; containment is a stronger signal than edit distance
// alone reports.
const substringFloor = 0.8

// Score rates how plausibly tx settles invoice. It returns a score in
// [0, 100] rounded to two decimals (banker's rounding) and a reason string
// listing which components fired, "; "-joined.
//
// Score does not check currencies. Callers deciding matches must only pair
// same-currency records; diagnostic callers may score any pair.
func Score(invoice *models.Invoice, tx *models.BankTransaction) (decimal.Decimal, string) {
	score := decimal.Zero
	var reasons []string

	amountDiff := invoice.Amount.Sub(tx.Amount).Abs()
	switch {
	case amountDiff.IsZero():
		score = score.Add(ExactAmountWeight)
		reasons = append(reasons, "exact amount match")
	case amountDiff.LessThanOrEqual(AmountTolerance):
		proportion := decimal.NewFromInt(1).Sub(amountDiff.Div(AmountTolerance))
		score = score.Add(AmountToleranceWeight.Mul(proportion))
		reasons = append(reasons, fmt.Sprintf("amount within tolerance (%s)", amountDiff))
	default:
		reasons = append(reasons, "amount mismatch")
	}

	if invoice.InvoiceDate != nil {
		days := daysBetween(*invoice.InvoiceDate, tx.PostedAt)
		if days <= DateToleranceDays {
			proportion := decimal.NewFromInt(1).Sub(
				decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(DateToleranceDays)))
			score = score.Add(DateProximityWeight.Mul(proportion))
			reasons = append(reasons, fmt.Sprintf("date within %d days", days))
		} else {
			reasons = append(reasons, fmt.Sprintf("date difference %d days", days))
		}
	}

	if ratio := textSimilarity(invoice, tx); ratio > 0 {
		score = score.Add(TextSimilarityWeight.Mul(decimal.NewFromFloat(ratio)))
		reasons = append(reasons, "text similarity match")
	}

	if score.GreaterThan(maxScore) {
		score = maxScore
	}
	score = score.RoundBank(2)

	reason := "low confidence match"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, "; ")
	}
	return score, reason
}

// textSimilarity compares everything textual we know about the invoice
// (number, description, vendor name) against the transaction description,
// lower-cased. Returns a ratio in [0, 1]; 0 when either side has no text.
func textSimilarity(invoice *models.Invoice, tx *models.BankTransaction) float64 {
	var parts []string
	if invoice.InvoiceNumber != nil && *invoice.InvoiceNumber != "" {
		parts = append(parts, strings.ToLower(*invoice.InvoiceNumber))
	}
	if invoice.Description != nil && *invoice.Description != "" {
		parts = append(parts, strings.ToLower(*invoice.Description))
	}
	if invoice.Vendor != nil && invoice.Vendor.Name != "" {
		parts = append(parts, strings.ToLower(invoice.Vendor.Name))
	}
	invoiceText := strings.Join(parts, " ")

	var txText string
	if tx.Description != nil {
		txText = strings.ToLower(*tx.Description)
	}

	if invoiceText == "" || txText == "" {
		return 0
	}

	ratio := levenshtein.RatioForStrings([]rune(invoiceText), []rune(txText), levenshtein.DefaultOptions)

	if strings.Contains(invoiceText, txText) || strings.Contains(txText, invoiceText) {
		if ratio < substringFloor {
			ratio = substringFloor
		}
	}
	return ratio
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
