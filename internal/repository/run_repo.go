package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"traveldesk-backend/internal/models"
)

// RunRepository persists reconciliation runs, CSV upload batches and the
// audit trail.
type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) CreateRun(run *models.ReconcileRun) error {
	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("create reconcile run: %w", err)
	}
	return nil
}

func (r *RunRepository) UpdateRun(run *models.ReconcileRun) error {
	if err := r.db.Save(run).Error; err != nil {
		return fmt.Errorf("update reconcile run %s: %w", run.ID, err)
	}
	return nil
}

func (r *RunRepository) GetRun(id uuid.UUID) (*models.ReconcileRun, error) {
	var run models.ReconcileRun
	if err := r.db.First(&run, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reconcile run %s: %w", id, err)
	}
	return &run, nil
}

func (r *RunRepository) CreateUploadBatch(batch *models.UploadBatch) error {
	if err := r.db.Create(batch).Error; err != nil {
		return fmt.Errorf("create upload batch: %w", err)
	}
	return nil
}

func (r *RunRepository) GetUploadBatch(id uuid.UUID) (*models.UploadBatch, error) {
	var batch models.UploadBatch
	if err := r.db.First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get upload batch %s: %w", id, err)
	}
	return &batch, nil
}

func (r *RunRepository) UpdateBatchProgress(id uuid.UUID, count int) error {
	err := r.db.Model(&models.UploadBatch{}).
		Where("id = ?", id).
		Update("processed_count", count).Error
	if err != nil {
		return fmt.Errorf("update batch progress: %w", err)
	}
	return nil
}

func (r *RunRepository) MarkBatchCompleted(id uuid.UUID, total int) error {
	now := time.Now()
	err := r.db.Model(&models.UploadBatch{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed_count":    total,
			"total_transactions": total,
			"status":             "completed",
			"completed_at":       now,
		}).Error
	if err != nil {
		return fmt.Errorf("mark batch completed: %w", err)
	}
	return nil
}

func (r *RunRepository) CreateAudit(entry *models.MatchAuditLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}
	return nil
}

// StatRow is one status bucket from the per-batch aggregate query.
type StatRow struct {
	Status string
	Count  int64
	Sum    float64
}

// BatchStats aggregates a batch's transactions by status.
func (r *RunRepository) BatchStats(batchID uuid.UUID) ([]StatRow, error) {
	var rows []StatRow
	err := r.db.Model(&models.BankTransaction{}).
		Where("upload_batch_id = ?", batchID).
		Select("status, COUNT(*) as count, COALESCE(SUM(amount),0) as sum").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("batch stats for %s: %w", batchID, err)
	}
	return rows, nil
}
