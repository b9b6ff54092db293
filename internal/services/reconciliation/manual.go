package reconciliation

import (
	"time"

	"github.com/google/uuid"

	"traveldesk-backend/internal/models"
)

// Manual review operations. These are the only paths that move a transaction
// backwards in its lifecycle; the engine itself never does.

// Confirm accepts an engine-proposed match on a transaction.
func (s *Service) Confirm(txID uuid.UUID, performedBy string) (*models.BankTransaction, error) {
	tx, err := s.txStore.GetByID(txID)
	if err != nil {
		return nil, err
	}

	tx.Status = models.TxStatusConfirmed
	tx.ConfidenceScore = 1.0
	if err := s.txStore.Save(tx); err != nil {
		return nil, err
	}

	if tx.MatchedRecordID != nil {
		match := &models.Match{
			ID:            uuid.New(),
			TransactionID: tx.ID,
			RecordID:      *tx.MatchedRecordID,
			Status:        models.MatchStatusConfirmed,
			Confidence:    1.0,
			Reason:        "manually confirmed",
			CreatedAt:     time.Now(),
		}
		if err := s.matchStore.Create(match); err != nil {
			return nil, err
		}
	}

	s.audit(tx.ID, models.AuditActionConfirm, nil, tx.MatchedRecordID, performedBy, "reviewer confirmed match")
	return tx, nil
}

// Reject sends a transaction back to the unmatched pool.
func (s *Service) Reject(txID uuid.UUID, performedBy string) (*models.BankTransaction, error) {
	tx, err := s.txStore.GetByID(txID)
	if err != nil {
		return nil, err
	}

	previous := tx.MatchedRecordID
	tx.Status = models.TxStatusUnmatched
	tx.MatchedRecordID = nil
	tx.ConfidenceScore = 0
	tx.MatchDetails = nil
	if err := s.txStore.Save(tx); err != nil {
		return nil, err
	}

	s.audit(tx.ID, models.AuditActionReject, previous, nil, performedBy, "reviewer rejected match")
	return tx, nil
}

// ManualMatch pairs a transaction with an explicitly chosen record.
func (s *Service) ManualMatch(txID, recordID uuid.UUID, performedBy string) (*models.BankTransaction, error) {
	tx, err := s.txStore.GetByID(txID)
	if err != nil {
		return nil, err
	}
	rec, err := s.recordStore.GetByID(recordID)
	if err != nil {
		return nil, err
	}

	previous := tx.MatchedRecordID
	tx.Status = models.TxStatusConfirmed
	tx.MatchedRecordID = &rec.ID
	tx.ConfidenceScore = 1.0
	if err := s.txStore.Save(tx); err != nil {
		return nil, err
	}

	match := &models.Match{
		ID:            uuid.New(),
		TransactionID: tx.ID,
		RecordID:      rec.ID,
		Status:        models.MatchStatusManual,
		Confidence:    1.0,
		Reason:        "manual match",
		CreatedAt:     time.Now(),
	}
	if err := s.matchStore.Create(match); err != nil {
		return nil, err
	}
	if err := s.recordStore.MarkMatched([]uuid.UUID{rec.ID}); err != nil {
		return nil, err
	}

	s.audit(tx.ID, models.AuditActionManualMatch, previous, &rec.ID, performedBy, "reviewer matched manually")
	return tx, nil
}

// MarkExternal flags a transaction as outside the reconciliation scope
// (bank fees, internal transfers).
func (s *Service) MarkExternal(txID uuid.UUID, performedBy string) (*models.BankTransaction, error) {
	tx, err := s.txStore.GetByID(txID)
	if err != nil {
		return nil, err
	}

	previous := tx.MatchedRecordID
	tx.Status = models.TxStatusExternal
	tx.MatchedRecordID = nil
	tx.ConfidenceScore = 0
	if err := s.txStore.Save(tx); err != nil {
		return nil, err
	}

	s.audit(tx.ID, models.AuditActionExternal, previous, nil, performedBy, "marked external")
	return tx, nil
}

func (s *Service) audit(txID uuid.UUID, action string, previous, next *uuid.UUID, performedBy, reason string) {
	entry := &models.MatchAuditLog{
		ID:             uuid.New(),
		TransactionID:  txID,
		Action:         action,
		PreviousRecord: previous,
		NewRecord:      next,
		PerformedBy:    performedBy,
		Reason:         reason,
		CreatedAt:      time.Now(),
	}
	if err := s.runStore.CreateAudit(entry); err != nil {
		s.logger.Error("audit write failed", "transaction_id", txID, "action", action, "error", err)
	}
}
