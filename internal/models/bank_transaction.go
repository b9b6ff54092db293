package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Reconciliation status of a bank transaction. A transaction only moves
// forward: unmatched -> suggested -> matched/confirmed. Reversal is a
// manual operation (reject), never something the engine does.
const (
	TxStatusUnmatched = "unmatched"
	TxStatusSuggested = "suggested"
	TxStatusMatched   = "matched"
	TxStatusConfirmed = "confirmed"
	TxStatusExternal  = "external"
)

// BankTransaction is one imported bank statement line. Positive amounts are
// money in, negative amounts are money out. The reconciliation engine never
// mutates these rows; status updates happen in the service layer.
type BankTransaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UploadBatchID   uuid.UUID       `gorm:"index" json:"upload_batch_id"`
	TransactionDate time.Time       `gorm:"column:transaction_date" json:"transaction_date"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);index" json:"amount"`
	BankName        string          `json:"bank_name"`
	GroupID         *string         `gorm:"index" json:"group_id,omitempty"`
	ReferenceNumber string          `json:"reference_number"`
	Status          string          `gorm:"index" json:"status"`
	MatchedRecordID *uuid.UUID      `json:"matched_record_id,omitempty"`
	ConfidenceScore float64         `json:"confidence_score"`
	MatchDetails    datatypes.JSON  `json:"match_details,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
