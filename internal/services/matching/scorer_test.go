package matching

import (
	"testing"
	"time"

	"invoice-reconciliation-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

func timePtr(v time.Time) *time.Time { return &v }

func invoiceFixture(amount string) *models.Invoice {
	return &models.Invoice{
		Amount:   dec(amount),
		Currency: "USD",
		Status:   models.InvoiceStatusOpen,
	}
}

func transactionFixture(amount string, postedAt time.Time) *models.BankTransaction {
	return &models.BankTransaction{
		Amount:   dec(amount),
		Currency: "USD",
		PostedAt: postedAt,
	}
}

func TestScoreExactAmount(t *testing.T) {
	invoice := invoiceFixture("150.00")
	tx := transactionFixture("150.00", time.Now())

	score, reason := Score(invoice, tx)

	assert.True(t, score.Equal(dec("50")), "got %s", score)
	assert.Equal(t, "exact amount match", reason)
}

func TestScoreAmountTolerance(t *testing.T) {
	posted := time.Now()

	t.Run("half tolerance earns half credit", func(t *testing.T) {
		invoice := invoiceFixture("100.00")
		tx := transactionFixture("100.005", posted)

		score, reason := Score(invoice, tx)

		assert.True(t, score.Equal(dec("15")), "got %s", score)
		assert.Equal(t, "amount within tolerance (0.005)", reason)
	})

	t.Run("difference equal to tolerance earns nothing", func(t *testing.T) {
		invoice := invoiceFixture("100.00")
		tx := transactionFixture("100.01", posted)

		score, reason := Score(invoice, tx)

		assert.True(t, score.IsZero(), "got %s", score)
		assert.Equal(t, "amount within tolerance (0.01)", reason)
	})

	t.Run("difference beyond tolerance is a mismatch", func(t *testing.T) {
		invoice := invoiceFixture("100.00")
		tx := transactionFixture("100.02", posted)

		score, reason := Score(invoice, tx)

		assert.True(t, score.IsZero(), "got %s", score)
		assert.Equal(t, "amount mismatch", reason)
	})
}

func TestScoreDateProximity(t *testing.T) {
	posted := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		date   time.Time
		want   decimal.Decimal
		reason string
	}{
		{"same day", posted, dec("65"), "exact amount match; date within 0 days"},
		{"one day apart", posted.AddDate(0, 0, 1), dec("60"), "exact amount match; date within 1 days"},
		{"two days apart", posted.AddDate(0, 0, -2), dec("55"), "exact amount match; date within 2 days"},
		{"at the window edge", posted.AddDate(0, 0, 3), dec("50"), "exact amount match; date within 3 days"},
		{"outside the window", posted.AddDate(0, 0, 4), dec("50"), "exact amount match; date difference 4 days"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			invoice := invoiceFixture("42.00")
			invoice.InvoiceDate = timePtr(tc.date)
			tx := transactionFixture("42.00", posted)

			score, reason := Score(invoice, tx)

			assert.True(t, score.Equal(tc.want), "want %s, got %s", tc.want, score)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestScoreSkipsDateWhenInvoiceUndated(t *testing.T) {
	invoice := invoiceFixture("42.00")
	tx := transactionFixture("42.00", time.Now())

	score, reason := Score(invoice, tx)

	assert.True(t, score.Equal(dec("50")), "got %s", score)
	assert.NotContains(t, reason, "date")
}

func TestScoreTextSimilarity(t *testing.T) {
	posted := time.Now()

	t.Run("identical descriptions earn full credit", func(t *testing.T) {
		invoice := invoiceFixture("75.00")
		invoice.Description = strPtr("Office chairs")
		tx := transactionFixture("75.00", posted)
		tx.Description = strPtr("office chairs")

		score, reason := Score(invoice, tx)

		assert.True(t, score.Equal(dec("55")), "got %s", score)
		assert.Equal(t, "exact amount match; text similarity match", reason)
	})

	t.Run("containment floors the ratio", func(t *testing.T) {
		invoice := invoiceFixture("75.00")
		invoice.Description = strPtr("acme")
		tx := transactionFixture("9.00", posted)
		tx.Description = strPtr("acme 1234567890 payment reference 99887766554433")

		score, reason := Score(invoice, tx)

		// Raw edit similarity is far below the 0.8 floor here.
		assert.True(t, score.Equal(dec("4")), "got %s", score)
		assert.Equal(t, "amount mismatch; text similarity match", reason)
	})

	t.Run("vendor name feeds the comparison", func(t *testing.T) {
		invoice := invoiceFixture("75.00")
		invoice.Vendor = &models.Vendor{Name: "Globex Corporation"}
		tx := transactionFixture("75.00", posted)
		tx.Description = strPtr("globex corporation")

		score, reason := Score(invoice, tx)

		assert.True(t, score.Equal(dec("55")), "got %s", score)
		assert.Contains(t, reason, "text similarity match")
	})

	t.Run("no transaction description earns nothing", func(t *testing.T) {
		invoice := invoiceFixture("75.00")
		invoice.Description = strPtr("anything at all")
		tx := transactionFixture("75.00", posted)

		score, reason := Score(invoice, tx)

		assert.True(t, score.Equal(dec("50")), "got %s", score)
		assert.NotContains(t, reason, "text")
	})
}

func TestScorePerfectTriple(t *testing.T) {
	posted := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	invoice := invoiceFixture("1200.00")
	invoice.InvoiceDate = timePtr(posted)
	invoice.Description = strPtr("June retainer")
	tx := transactionFixture("1200.00", posted)
	tx.Description = strPtr("june retainer")

	score, reason := Score(invoice, tx)

	require.True(t, score.LessThanOrEqual(dec("100")))
	assert.True(t, score.Equal(dec("70")), "got %s", score)
	assert.Equal(t, "exact amount match; date within 0 days; text similarity match", reason)
}

func TestScoreDeterministic(t *testing.T) {
	posted := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	invoice := invoiceFixture("88.40")
	invoice.InvoiceDate = timePtr(posted.AddDate(0, 0, 2))
	invoice.InvoiceNumber = strPtr("INV-2024-017")
	tx := transactionFixture("88.41", posted)
	tx.Description = strPtr("payment inv-2024-017")

	first, firstReason := Score(invoice, tx)
	second, secondReason := Score(invoice, tx)

	assert.True(t, first.Equal(second), "%s vs %s", first, second)
	assert.Equal(t, firstReason, secondReason)
}

func TestScoreThresholdConstant(t *testing.T) {
	// A bare within-tolerance hit at the edge scores zero and must sit
	// below the proposal threshold.
	invoice := invoiceFixture("10.00")
	tx := transactionFixture("10.01", time.Now())

	score, _ := Score(invoice, tx)

	assert.True(t, score.LessThan(MinScoreThreshold))
}
