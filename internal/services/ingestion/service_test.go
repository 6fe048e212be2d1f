package ingestion

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"invoice-reconciliation-backend/internal/apperr"
	"invoice-reconciliation-backend/internal/models"
	"invoice-reconciliation-backend/internal/repository"
	"invoice-reconciliation-backend/internal/services/idempotency"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.BankTransaction{}, &models.IdempotencyRecord{}))
	return db
}

func testService(t *testing.T) (*IngestionService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := idempotency.NewLedger(repository.NewIdempotencyRepository(db), logger)
	return NewIngestionService(repository.NewBankTransactionRepository(db), ledger, logger), db
}

func countTransactions(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.BankTransaction{}).Count(&n).Error)
	return n
}

func strPtr(s string) *string { return &s }

var posted = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func sampleItems() []TransactionInput {
	return []TransactionInput{
		{
			ExternalID:  strPtr("bank-001"),
			PostedAt:    posted,
			Amount:      decimal.RequireFromString("150.00"),
			Currency:    "USD",
			Description: strPtr("ACME CORP payment"),
		},
		{
			PostedAt: posted.AddDate(0, 0, 1),
			Amount:   decimal.RequireFromString("75.50"),
			Currency: "USD",
		},
	}
}

func TestImportCreatesTransactions(t *testing.T) {
	svc, db := testService(t)
	tenantID := uuid.New()

	created, replayed, err := svc.Import(tenantID, sampleItems(), "")
	require.NoError(t, err)

	assert.False(t, replayed)
	require.Len(t, created, 2)
	for _, tx := range created {
		assert.NotEqual(t, uuid.Nil, tx.ID)
		assert.Equal(t, tenantID, tx.TenantID)
	}
	assert.EqualValues(t, 2, countTransactions(t, db))
}

func TestImportNormalizesInput(t *testing.T) {
	svc, _ := testService(t)
	tenantID := uuid.New()

	created, _, err := svc.Import(tenantID, []TransactionInput{{
		ExternalID:  strPtr("  bank-007  "),
		PostedAt:    posted,
		Amount:      decimal.RequireFromString("10.00"),
		Currency:    " usd ",
		Description: strPtr("  coffee beans  "),
	}}, "")
	require.NoError(t, err)

	require.Len(t, created, 1)
	assert.Equal(t, "USD", created[0].Currency)
	require.NotNil(t, created[0].ExternalID)
	assert.Equal(t, "bank-007", *created[0].ExternalID)
	require.NotNil(t, created[0].Description)
	assert.Equal(t, "coffee beans", *created[0].Description)
}

func TestImportValidation(t *testing.T) {
	cases := []struct {
		name string
		item TransactionInput
	}{
		{"zero amount", TransactionInput{PostedAt: posted, Amount: decimal.Zero, Currency: "USD"}},
		{"negative amount", TransactionInput{PostedAt: posted, Amount: decimal.RequireFromString("-5.00"), Currency: "USD"}},
		{"missing posted_at", TransactionInput{Amount: decimal.RequireFromString("5.00"), Currency: "USD"}},
		{"blank currency", TransactionInput{PostedAt: posted, Amount: decimal.RequireFromString("5.00"), Currency: "   "}},
		{"blank external_id", TransactionInput{PostedAt: posted, Amount: decimal.RequireFromString("5.00"), Currency: "USD", ExternalID: strPtr(" ")}},
		{"blank description", TransactionInput{PostedAt: posted, Amount: decimal.RequireFromString("5.00"), Currency: "USD", Description: strPtr("")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, db := testService(t)
			tenantID := uuid.New()

			// A valid leading item must not survive a later invalid one.
			valid := TransactionInput{PostedAt: posted, Amount: decimal.RequireFromString("1.00"), Currency: "USD"}

			_, _, err := svc.Import(tenantID, []TransactionInput{valid, tc.item}, "")

			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.EqualValues(t, 0, countTransactions(t, db))
		})
	}
}

func TestImportReplaysSamePayload(t *testing.T) {
	svc, db := testService(t)
	tenantID := uuid.New()

	first, replayed, err := svc.Import(tenantID, sampleItems(), "batch-2024-03")
	require.NoError(t, err)
	require.False(t, replayed)

	second, replayed, err := svc.Import(tenantID, sampleItems(), "batch-2024-03")
	require.NoError(t, err)

	assert.True(t, replayed)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	assert.EqualValues(t, 2, countTransactions(t, db))
}

func TestImportReplayIgnoresInsignificantFormatting(t *testing.T) {
	svc, db := testService(t)
	tenantID := uuid.New()

	_, _, err := svc.Import(tenantID, []TransactionInput{{
		ExternalID:  strPtr("bank-001"),
		PostedAt:    posted,
		Amount:      decimal.RequireFromString("150.00"),
		Currency:    "USD",
		Description: strPtr("ACME CORP payment"),
	}}, "batch-ws")
	require.NoError(t, err)

	// Same payload modulo whitespace and currency casing hashes identically.
	_, replayed, err := svc.Import(tenantID, []TransactionInput{{
		ExternalID:  strPtr(" bank-001 "),
		PostedAt:    posted,
		Amount:      decimal.RequireFromString("150.00"),
		Currency:    "usd",
		Description: strPtr("  ACME CORP payment "),
	}}, "batch-ws")
	require.NoError(t, err)

	assert.True(t, replayed)
	assert.EqualValues(t, 1, countTransactions(t, db))
}

func TestImportRejectsKeyReuse(t *testing.T) {
	svc, db := testService(t)
	tenantID := uuid.New()

	_, _, err := svc.Import(tenantID, sampleItems(), "batch-2024-03")
	require.NoError(t, err)

	other := sampleItems()
	other[0].Amount = decimal.RequireFromString("999.99")

	_, _, err = svc.Import(tenantID, other, "batch-2024-03")

	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Contains(t, err.Error(), "idempotency key reused with different payload")
	assert.EqualValues(t, 2, countTransactions(t, db))
}

func TestImportReusesExternalID(t *testing.T) {
	svc, db := testService(t)
	tenantID := uuid.New()

	first, _, err := svc.Import(tenantID, sampleItems()[:1], "")
	require.NoError(t, err)

	again := []TransactionInput{
		sampleItems()[0],
		{
			ExternalID: strPtr("bank-002"),
			PostedAt:   posted,
			Amount:     decimal.RequireFromString("20.00"),
			Currency:   "USD",
		},
	}
	second, replayed, err := svc.Import(tenantID, again, "")
	require.NoError(t, err)

	assert.False(t, replayed)
	require.Len(t, second, 2)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.NotEqual(t, first[0].ID, second[1].ID)
	assert.EqualValues(t, 2, countTransactions(t, db))
}

func TestImportDeduplicatesWithinBatch(t *testing.T) {
	svc, db := testService(t)
	tenantID := uuid.New()

	item := sampleItems()[0]
	created, _, err := svc.Import(tenantID, []TransactionInput{item, item}, "")
	require.NoError(t, err)

	require.Len(t, created, 2)
	assert.Equal(t, created[0].ID, created[1].ID)
	assert.EqualValues(t, 1, countTransactions(t, db))
}

func TestImportExternalIDsScopedPerTenant(t *testing.T) {
	svc, db := testService(t)

	a, _, err := svc.Import(uuid.New(), sampleItems()[:1], "")
	require.NoError(t, err)
	b, _, err := svc.Import(uuid.New(), sampleItems()[:1], "")
	require.NoError(t, err)

	assert.NotEqual(t, a[0].ID, b[0].ID)
	assert.EqualValues(t, 2, countTransactions(t, db))
}

func TestImportWithoutExternalIDNeverDeduplicates(t *testing.T) {
	svc, db := testService(t)
	tenantID := uuid.New()

	bare := sampleItems()[1:]
	_, _, err := svc.Import(tenantID, bare, "")
	require.NoError(t, err)
	_, _, err = svc.Import(tenantID, bare, "")
	require.NoError(t, err)

	assert.EqualValues(t, 2, countTransactions(t, db))
}

func TestImportRerunsWhenStoredRowsVanished(t *testing.T) {
	svc, db := testService(t)
	tenantID := uuid.New()

	first, _, err := svc.Import(tenantID, sampleItems()[:1], "batch-gone")
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.BankTransaction{}, "id = ?", first[0].ID).Error)

	// The ledger entry still matches, but its rows no longer resolve, so the
	// import runs again instead of replaying ghosts.
	second, replayed, err := svc.Import(tenantID, sampleItems()[:1], "batch-gone")
	require.NoError(t, err)

	assert.False(t, replayed)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].ID, second[0].ID)
	assert.EqualValues(t, 1, countTransactions(t, db))

	// The re-import refreshed the ledger entry, so the next retry replays.
	third, replayed, err := svc.Import(tenantID, sampleItems()[:1], "batch-gone")
	require.NoError(t, err)
	assert.True(t, replayed)
	require.Len(t, third, 1)
	assert.Equal(t, second[0].ID, third[0].ID)
}

func TestImportSurvivesLedgerWriteFailure(t *testing.T) {
	svc, db := testService(t)
	tenantID := uuid.New()

	// Swap the ledger table for a view: lookups keep working, writes fail.
	require.NoError(t, db.Exec("ALTER TABLE idempotency_records RENAME TO idempotency_records_base").Error)
	require.NoError(t, db.Exec("CREATE VIEW idempotency_records AS SELECT * FROM idempotency_records_base").Error)

	created, replayed, err := svc.Import(tenantID, sampleItems()[:1], "batch-ledger-down")
	require.NoError(t, err)
	assert.False(t, replayed)
	require.Len(t, created, 1)
	assert.EqualValues(t, 1, countTransactions(t, db))

	// The ledger entry was never stored, so the retry re-imports instead of
	// replaying; external_id reuse still returns the same row.
	again, replayed, err := svc.Import(tenantID, sampleItems()[:1], "batch-ledger-down")
	require.NoError(t, err)
	assert.False(t, replayed)
	require.Len(t, again, 1)
	assert.Equal(t, created[0].ID, again[0].ID)
	assert.EqualValues(t, 1, countTransactions(t, db))
}

func TestGetTransaction(t *testing.T) {
	svc, _ := testService(t)
	tenantID := uuid.New()

	created, _, err := svc.Import(tenantID, sampleItems()[:1], "")
	require.NoError(t, err)

	got, err := svc.Get(tenantID, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, created[0].ID, got.ID)

	_, err = svc.Get(tenantID, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// Another tenant cannot see the row.
	_, err = svc.Get(uuid.New(), created[0].ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListTransactions(t *testing.T) {
	svc, _ := testService(t)
	tenantID := uuid.New()

	_, _, err := svc.Import(tenantID, sampleItems(), "")
	require.NoError(t, err)
	_, _, err = svc.Import(uuid.New(), sampleItems(), "")
	require.NoError(t, err)

	listed, err := svc.List(tenantID, 0, 100)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	// Newest posted first.
	assert.True(t, listed[0].PostedAt.After(listed[1].PostedAt))
	for _, tx := range listed {
		assert.Equal(t, tenantID, tx.TenantID)
	}

	page, err := svc.List(tenantID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, listed[1].ID, page[0].ID)
}
