package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"traveldesk-backend/internal/models"
)

// MatchRepository persists committed pairings. Its BulkInsert satisfies the
// engine's MatchStore interface: one Create call for the whole slice, so a
// failure is reported for the batch as a whole.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) BulkInsert(ctx context.Context, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&matches).Error; err != nil {
		return fmt.Errorf("bulk insert matches: %w", err)
	}
	return nil
}

func (r *MatchRepository) Create(m *models.Match) error {
	if err := r.db.Create(m).Error; err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

// ConfirmedTransactionIDs returns the set of transactions that already hold
// a confirmed or manual match; the batch reconciler excludes them from its
// input.
func (r *MatchRepository) ConfirmedTransactionIDs(ctx context.Context) (map[uuid.UUID]bool, error) {
	return r.confirmedIDs(ctx, "transaction_id")
}

// ConfirmedRecordIDs is the record-side counterpart.
func (r *MatchRepository) ConfirmedRecordIDs(ctx context.Context) (map[uuid.UUID]bool, error) {
	return r.confirmedIDs(ctx, "record_id")
}

func (r *MatchRepository) confirmedIDs(ctx context.Context, column string) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("status IN ?", []string{models.MatchStatusConfirmed, models.MatchStatusManual}).
		Pluck(column, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load confirmed %s set: %w", column, err)
	}

	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// ListByRun returns the matches a reconciliation run committed.
func (r *MatchRepository) ListByRun(runID uuid.UUID) ([]models.Match, error) {
	var matches []models.Match
	err := r.db.
		Where("run_id = ?", runID).
		Order("created_at ASC").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("list matches for run %s: %w", runID, err)
	}
	return matches, nil
}
