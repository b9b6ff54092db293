package repository

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"traveldesk-backend/internal/models"
	"traveldesk-backend/internal/recon"
)

type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create inserts a record, silently ignoring duplicates on the primary key
// so re-imports are idempotent.
func (r *RecordRepository) Create(rec *models.FinancialRecord) error {
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(rec).Error; err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

func (r *RecordRepository) GetByID(id uuid.UUID) (*models.FinancialRecord, error) {
	var rec models.FinancialRecord
	if err := r.db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	return &rec, nil
}

// ListOpen returns every record still available for matching.
func (r *RecordRepository) ListOpen() ([]*models.FinancialRecord, error) {
	var records []*models.FinancialRecord
	err := r.db.
		Where("status = ?", models.RecordStatusOpen).
		Order("created_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list open records: %w", err)
	}
	return records, nil
}

// MarkMatched flips the given records out of the open pool.
func (r *RecordRepository) MarkMatched(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.Model(&models.FinancialRecord{}).
		Where("id IN ?", ids).
		Update("status", models.RecordStatusMatched).Error
	if err != nil {
		return fmt.Errorf("mark records matched: %w", err)
	}
	return nil
}

// SearchByVendor does a fuzzy vendor/client lookup for the manual matching
// screen: candidates are prefiltered in SQL, then ranked by edit distance on
// normalized names so "Aegaen" still finds "Aegean Airlines".
func (r *RecordRepository) SearchByVendor(query string, limit int) ([]*models.FinancialRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	normQuery := recon.NormalizeText(query)
	if normQuery == "" {
		return nil, nil
	}

	var candidates []*models.FinancialRecord
	err := r.db.
		Where("status = ?", models.RecordStatusOpen).
		Where("vendor_or_client <> ''").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}

	return rankVendors(normQuery, candidates, limit), nil
}

// rankVendors orders candidates by edit distance between the normalized
// query and the normalized vendor name. Substring hits rank first; anything
// needing more edits than the query has runes is dropped.
func rankVendors(normQuery string, candidates []*models.FinancialRecord, limit int) []*models.FinancialRecord {
	type scored struct {
		rec      *models.FinancialRecord
		distance int
	}
	var ranked []scored
	for _, rec := range candidates {
		normVendor := recon.NormalizeText(rec.VendorOrClient)
		if normVendor == "" {
			continue
		}
		distance := levenshtein.ComputeDistance(normQuery, normVendor)
		if strings.Contains(normVendor, normQuery) {
			distance = 0
		}
		if distance > len([]rune(normQuery)) {
			continue
		}
		ranked = append(ranked, scored{rec: rec, distance: distance})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].distance < ranked[j].distance })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	records := make([]*models.FinancialRecord, len(ranked))
	for i, s := range ranked {
		records[i] = s.rec
	}
	return records
}
