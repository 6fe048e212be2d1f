// Package reconciliation pairs open invoices with unmatched bank
// transactions and manages the proposed -> confirmed match lifecycle.
package reconciliation

import (
	"errors"

	"invoice-reconciliation-backend/internal/apperr"
	"invoice-reconciliation-backend/internal/models"
	"invoice-reconciliation-backend/internal/repository"
	"invoice-reconciliation-backend/internal/services/matching"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReconciliationService struct {
	invoiceRepo     *repository.InvoiceRepository
	transactionRepo *repository.BankTransactionRepository
	matchRepo       *repository.MatchRepository
	db              *gorm.DB
}

func NewReconciliationService(
	invoiceRepo *repository.InvoiceRepository,
	transactionRepo *repository.BankTransactionRepository,
	matchRepo *repository.MatchRepository,
) *ReconciliationService {
	return &ReconciliationService{
		invoiceRepo:     invoiceRepo,
		transactionRepo: transactionRepo,
		matchRepo:       matchRepo,
		db:              invoiceRepo.DB(),
	}
}

// Candidate is an invoice/transaction pairing a reconciliation run proposed.
type Candidate struct {
	InvoiceID         uuid.UUID       `json:"invoice_id"`
	BankTransactionID uuid.UUID       `json:"bank_transaction_id"`
	Score             decimal.Decimal `json:"score"`
	Reason            string          `json:"reason"`
}

// Result summarizes one reconciliation run.
type Result struct {
	Candidates        []Candidate `json:"candidates"`
	TotalInvoices     int         `json:"total_invoices"`
	TotalTransactions int         `json:"total_transactions"`
	MatchesFound      int         `json:"matches_found"`
}

// Reconcile scores every open invoice against every transaction without a
// confirmed match and keeps, per invoice, the single best candidate at or
// above the proposal threshold. Winners are persisted as PROPOSED matches;
// pairs proposed by an earlier run are reported again but not re-inserted.
//
// Both pools are read in a fixed order and a candidate is only displaced by
// a strictly higher score, so a run over the same data always proposes the
// same pairs.
func (s *ReconciliationService) Reconcile(tenantID uuid.UUID) (*Result, error) {
	invoices, err := s.invoiceRepo.FindOpen(tenantID)
	if err != nil {
		return nil, apperr.Persistencef("loading open invoices: %v", err)
	}
	transactions, err := s.transactionRepo.FindUnmatched(tenantID)
	if err != nil {
		return nil, apperr.Persistencef("loading unmatched transactions: %v", err)
	}

	candidates := make([]Candidate, 0, len(invoices))
	for i := range invoices {
		invoice := &invoices[i]
		var best *Candidate

		for j := range transactions {
			tx := &transactions[j]
			if invoice.Currency != tx.Currency {
				continue
			}
			score, reason := matching.Score(invoice, tx)
			if score.LessThan(matching.MinScoreThreshold) {
				continue
			}
			if best == nil || score.GreaterThan(best.Score) {
				best = &Candidate{
					InvoiceID:         invoice.ID,
					BankTransactionID: tx.ID,
					Score:             score,
					Reason:            reason,
				}
			}
		}

		if best != nil {
			candidates = append(candidates, *best)
		}
	}

	proposals := make([]models.Match, len(candidates))
	for i, c := range candidates {
		proposals[i] = models.Match{
			ID:                uuid.New(),
			TenantID:          tenantID,
			InvoiceID:         c.InvoiceID,
			BankTransactionID: c.BankTransactionID,
			Score:             c.Score,
			Status:            models.MatchStatusProposed,
		}
	}
	if err := s.matchRepo.InsertProposals(proposals); err != nil {
		return nil, apperr.Persistencef("storing match proposals: %v", err)
	}

	return &Result{
		Candidates:        candidates,
		TotalInvoices:     len(invoices),
		TotalTransactions: len(transactions),
		MatchesFound:      len(candidates),
	}, nil
}

// ConfirmMatch promotes a PROPOSED match to CONFIRMED and flips its invoice
// to MATCHED, atomically. The status condition on the UPDATE is the guard:
// of two concurrent confirmations exactly one flips the row, the other sees
// zero rows affected and reports not found.
func (s *ReconciliationService) ConfirmMatch(tenantID, matchID uuid.UUID) (*models.Match, error) {
	var confirmed models.Match
	err := s.db.Transaction(func(dbtx *gorm.DB) error {
		result := dbtx.Model(&models.Match{}).
			Where("id = ? AND tenant_id = ? AND status = ?", matchID, tenantID, models.MatchStatusProposed).
			Update("status", models.MatchStatusConfirmed)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.NotFoundf("match not found or already processed")
		}

		if err := dbtx.First(&confirmed, "id = ?", matchID).Error; err != nil {
			return err
		}
		return dbtx.Model(&models.Invoice{}).
			Where("id = ? AND tenant_id = ?", confirmed.InvoiceID, tenantID).
			Update("status", models.InvoiceStatusMatched).Error
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Persistencef("confirming match: %v", err)
	}
	return &confirmed, nil
}
