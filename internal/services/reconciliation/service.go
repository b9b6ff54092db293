// Package reconciliation orchestrates the engine against the store: it loads
// the unmatched pools, invokes the ranker or the batch reconciler, and writes
// statuses, matches and audit rows back.
package reconciliation

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"traveldesk-backend/internal/models"
	"traveldesk-backend/internal/recon"
)

// Service wires the reconciliation engine to the repositories.
type Service struct {
	txStore     TransactionStore
	recordStore RecordStore
	matchStore  MatchStore
	runStore    RunStore
	reconciler  *recon.BatchReconciler
	logger      *slog.Logger

	maxSuggestions int

	// runMu serializes batch runs inside this process. The store itself has
	// no cross-run isolation, so two concurrent runs could both claim the
	// same record; this is the process-local mitigation. Deployments with
	// several replicas need an external job lock.
	runMu sync.Mutex

	// suggestionCache memoizes Rank output, at most one entry per
	// transaction. Each entry carries the fingerprint of the pool it was
	// computed against; a changed pool misses and overwrites the entry, so
	// the cache stays bounded by the transaction count.
	suggestionCache sync.Map

	// progressCache mirrors upload progress for cheap polling.
	progressCache sync.Map
}

// Progress is the polled state of a background CSV import.
type Progress struct {
	ProcessedCount int    `json:"processed_count"`
	Total          int    `json:"total"`
	Status         string `json:"status"`
}

func NewService(txStore TransactionStore, recordStore RecordStore, matchStore MatchStore, runStore RunStore, maxSuggestions int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if maxSuggestions <= 0 {
		maxSuggestions = recon.DefaultMaxSuggestions
	}
	return &Service{
		txStore:        txStore,
		recordStore:    recordStore,
		matchStore:     matchStore,
		runStore:       runStore,
		reconciler:     recon.NewBatchReconciler(matchStore, logger.With("system", "recon")),
		logger:         logger,
		maxSuggestions: maxSuggestions,
	}
}

// SuggestFor ranks the open records against one transaction for human
// review. Results are memoized per pool fingerprint; recomputation is just a
// re-invocation of the pure ranker.
func (s *Service) SuggestFor(ctx context.Context, txID uuid.UUID) ([]recon.MatchSuggestion, error) {
	tx, err := s.txStore.GetByID(txID)
	if err != nil {
		return nil, err
	}

	records, err := s.recordStore.ListOpen()
	if err != nil {
		return nil, err
	}
	usedRecords, err := s.matchStore.ConfirmedRecordIDs(ctx)
	if err != nil {
		return nil, err
	}

	pool := records[:0]
	for _, rec := range records {
		if !usedRecords[rec.ID] {
			pool = append(pool, rec)
		}
	}

	fingerprint := poolFingerprint(pool)
	if cached, ok := s.suggestionCache.Load(txID); ok {
		if entry := cached.(suggestionEntry); entry.fingerprint == fingerprint {
			return entry.suggestions, nil
		}
	}

	suggestions := recon.Rank(tx, pool, s.maxSuggestions)
	s.suggestionCache.Store(txID, suggestionEntry{fingerprint: fingerprint, suggestions: suggestions})
	return suggestions, nil
}

type suggestionEntry struct {
	fingerprint uint64
	suggestions []recon.MatchSuggestion
}

func poolFingerprint(pool []*models.FinancialRecord) uint64 {
	h := fnv.New64a()
	for _, rec := range pool {
		h.Write(rec.ID[:])
	}
	return h.Sum64()
}

// RunOptions configures one batch reconciliation run.
type RunOptions struct {
	MinConfidence float64
	DryRun        bool
	GroupID       *string
}

// RunBatch executes the full read-compute-write sequence: load unmatched
// transactions and open records, exclude already-confirmed pairings,
// reconcile, then persist statuses and the run summary. The sequence is not
// transactional; see the runMu comment.
func (s *Service) RunBatch(ctx context.Context, opts RunOptions) (*recon.Result, *models.ReconcileRun, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	txs, err := s.txStore.ListUnmatched(opts.GroupID)
	if err != nil {
		return nil, nil, err
	}
	excludedTxs, err := s.matchStore.ConfirmedTransactionIDs(ctx)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.recordStore.ListOpen()
	if err != nil {
		return nil, nil, err
	}
	excludedRecords, err := s.matchStore.ConfirmedRecordIDs(ctx)
	if err != nil {
		return nil, nil, err
	}

	minConfidence := opts.MinConfidence
	if minConfidence <= 0 {
		minConfidence = recon.DefaultMinConfidence
	}
	run := &models.ReconcileRun{
		ID:            uuid.New(),
		MinConfidence: minConfidence,
		DryRun:        opts.DryRun,
		GroupID:       opts.GroupID,
		Status:        "running",
		StartedAt:     time.Now(),
		CreatedAt:     time.Now(),
	}
	if err := s.runStore.CreateRun(run); err != nil {
		return nil, nil, err
	}

	result, reconcileErr := s.reconciler.Reconcile(ctx, txs, records, recon.Options{
		MinConfidence:          minConfidence,
		DryRun:                 opts.DryRun,
		GroupID:                opts.GroupID,
		RunID:                  &run.ID,
		ExcludedTransactionIDs: excludedTxs,
		ExcludedRecordIDs:      excludedRecords,
	})

	run.TotalProcessed = result.TotalProcessed
	run.MatchedCount = result.Matched
	run.SuggestedCount = result.Suggested
	run.FailedCount = result.Failed
	now := time.Now()
	run.CompletedAt = &now
	if reconcileErr != nil {
		run.Status = "failed"
	} else {
		run.Status = "completed"
	}
	if err := s.runStore.UpdateRun(run); err != nil {
		s.logger.Error("persist run summary failed", "run_id", run.ID, "error", err)
	}

	if reconcileErr != nil {
		return result, run, reconcileErr
	}
	if !opts.DryRun {
		s.applyDecisions(txs, result, run)
	}
	return result, run, nil
}

// applyDecisions writes the engine's decisions back onto transactions and
// records: confirmed pairs become matched transactions and consumed records,
// suggestion-only decisions move the transaction to suggested.
func (s *Service) applyDecisions(txs []*models.BankTransaction, result *recon.Result, run *models.ReconcileRun) {
	byID := make(map[uuid.UUID]*models.BankTransaction, len(txs))
	for _, tx := range txs {
		byID[tx.ID] = tx
	}

	var matchedRecords []uuid.UUID
	for _, decision := range result.Matches {
		tx, ok := byID[decision.TransactionID]
		if !ok {
			continue
		}

		details, _ := json.Marshal(map[string]interface{}{
			"run_id":  run.ID.String(),
			"score":   decision.Score,
			"reasons": decision.Reasons,
			"kind":    decision.RecordKind,
		})

		switch decision.Status {
		case models.MatchStatusConfirmed:
			recordID := decision.RecordID
			tx.Status = models.TxStatusMatched
			tx.MatchedRecordID = &recordID
			tx.ConfidenceScore = decision.Score / 100
			tx.MatchDetails = datatypes.JSON(details)
			matchedRecords = append(matchedRecords, recordID)

			audit := &models.MatchAuditLog{
				ID:            uuid.New(),
				TransactionID: tx.ID,
				Action:        models.AuditActionAutoMatch,
				NewRecord:     &recordID,
				PerformedBy:   "reconciler",
				Reason:        fmt.Sprintf("auto-matched at %.0f points", decision.Score),
				CreatedAt:     time.Now(),
			}
			if err := s.runStore.CreateAudit(audit); err != nil {
				s.logger.Error("audit write failed", "transaction_id", tx.ID, "error", err)
			}
		case models.MatchStatusSuggested:
			if tx.Status != models.TxStatusUnmatched && tx.Status != models.TxStatusSuggested {
				continue
			}
			tx.Status = models.TxStatusSuggested
			tx.ConfidenceScore = decision.Score / 100
			tx.MatchDetails = datatypes.JSON(details)
		default:
			continue
		}

		if err := s.txStore.Save(tx); err != nil {
			s.logger.Error("status update failed", "transaction_id", tx.ID, "error", err)
		}
	}

	if err := s.recordStore.MarkMatched(matchedRecords); err != nil {
		s.logger.Error("marking records matched failed", "count", len(matchedRecords), "error", err)
	}
}

// GetRun returns one run's persisted summary.
func (s *Service) GetRun(id uuid.UUID) (*models.ReconcileRun, error) {
	return s.runStore.GetRun(id)
}

// RunMatches returns the match rows one run committed.
func (s *Service) RunMatches(id uuid.UUID) ([]models.Match, error) {
	return s.matchStore.ListByRun(id)
}
