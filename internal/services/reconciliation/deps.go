package reconciliation

import (
	"context"

	"github.com/google/uuid"

	"traveldesk-backend/internal/models"
	"traveldesk-backend/internal/recon"
	"traveldesk-backend/internal/repository"
)

// The service depends on narrow store interfaces so the orchestration logic
// can be tested without a database. The gorm repositories in
// internal/repository are the production implementations.

type TransactionStore interface {
	Create(tx *models.BankTransaction) error
	GetByID(id uuid.UUID) (*models.BankTransaction, error)
	ListUnmatched(groupID *string) ([]*models.BankTransaction, error)
	ListByBatch(opts repository.ListOptions) ([]models.BankTransaction, string, bool, error)
	Save(tx *models.BankTransaction) error
}

type RecordStore interface {
	Create(rec *models.FinancialRecord) error
	GetByID(id uuid.UUID) (*models.FinancialRecord, error)
	ListOpen() ([]*models.FinancialRecord, error)
	MarkMatched(ids []uuid.UUID) error
	SearchByVendor(query string, limit int) ([]*models.FinancialRecord, error)
}

type MatchStore interface {
	recon.MatchStore
	Create(m *models.Match) error
	ConfirmedTransactionIDs(ctx context.Context) (map[uuid.UUID]bool, error)
	ConfirmedRecordIDs(ctx context.Context) (map[uuid.UUID]bool, error)
	ListByRun(runID uuid.UUID) ([]models.Match, error)
}

type RunStore interface {
	CreateRun(run *models.ReconcileRun) error
	UpdateRun(run *models.ReconcileRun) error
	GetRun(id uuid.UUID) (*models.ReconcileRun, error)
	CreateUploadBatch(batch *models.UploadBatch) error
	GetUploadBatch(id uuid.UUID) (*models.UploadBatch, error)
	UpdateBatchProgress(id uuid.UUID, count int) error
	MarkBatchCompleted(id uuid.UUID, total int) error
	CreateAudit(entry *models.MatchAuditLog) error
	BatchStats(batchID uuid.UUID) ([]repository.StatRow, error)
}
