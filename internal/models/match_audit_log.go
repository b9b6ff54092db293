package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions.
const (
	AuditActionAutoMatch   = "auto_match"
	AuditActionConfirm     = "confirm"
	AuditActionReject      = "reject"
	AuditActionManualMatch = "manual_match"
	AuditActionExternal    = "mark_external"
)

type MatchAuditLog struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TransactionID  uuid.UUID  `gorm:"index"`
	Action         string
	PreviousRecord *uuid.UUID
	NewRecord      *uuid.UUID
	PerformedBy    string
	Reason         string
	CreatedAt      time.Time
}
