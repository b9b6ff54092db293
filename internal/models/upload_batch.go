package models

import (
	"time"

	"github.com/google/uuid"
)

// UploadBatch tracks one CSV statement upload and its background import.
type UploadBatch struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Filename          string     `json:"filename"`
	TotalTransactions int        `json:"total_transactions"`
	ProcessedCount    int        `json:"processed_count"`
	Status            string     `json:"status"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ReconcileRun is the persisted summary of one batch reconciliation run.
type ReconcileRun struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MinConfidence  float64    `json:"min_confidence"`
	DryRun         bool       `json:"dry_run"`
	GroupID        *string    `json:"group_id,omitempty"`
	TotalProcessed int        `json:"total_processed"`
	MatchedCount   int        `json:"matched_count"`
	SuggestedCount int        `json:"suggested_count"`
	FailedCount    int        `json:"failed_count"`
	Status         string     `json:"status"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
