package repository

import (
	"invoice-reconciliation-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// InsertProposals writes the run's winning candidates in one batch. The
// ON CONFLICT DO NOTHING clause makes re-runs and concurrent runs safe: a
// (tenant, invoice, transaction) pair already proposed is silently skipped,
// never an error.
func (r *MatchRepository) InsertProposals(matches []models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&matches).Error
}
