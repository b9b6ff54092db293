package models

import (
	"time"

	"github.com/google/uuid"
)

// Match status values. The batch reconciler persists confirmed pairs;
// reviewer-driven pairings are stored as manual and count as confirmed for
// pool exclusion.
const (
	MatchStatusConfirmed = "confirmed"
	MatchStatusSuggested = "suggested"
	MatchStatusManual    = "manual"
	MatchStatusFailed    = "failed"
)

// Match is a committed pairing between a bank transaction and a financial
// record. Within a single reconciliation run a transaction and a record each
// appear in at most one confirmed match; across concurrent runs the store
// provides no such guarantee (callers must serialize runs).
type Match struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionID uuid.UUID  `gorm:"index" json:"transaction_id"`
	RecordID      uuid.UUID  `gorm:"index" json:"record_id"`
	RunID         *uuid.UUID `gorm:"index" json:"run_id,omitempty"`
	Status        string     `gorm:"index" json:"status"`
	Confidence    float64    `json:"confidence"`
	Reason        string     `json:"reason"`
	CreatedAt     time.Time  `json:"created_at"`
}
