package recon

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"traveldesk-backend/internal/models"
)

// Batch thresholds on the additive 0-100 point scale.
const (
	// DefaultMinConfidence is the auto-confirm threshold.
	DefaultMinConfidence = 80.0
	// SuggestThreshold is the floor for suggestion-only decisions.
	SuggestThreshold = 50.0
)

// MatchStore receives the single bulk insert of auto-confirmed pairs at the
// end of a batch run.
type MatchStore interface {
	BulkInsert(ctx context.Context, matches []*models.Match) error
}

// Options configures one batch reconciliation run.
type Options struct {
	// MinConfidence is the auto-confirm threshold in points; zero means
	// DefaultMinConfidence.
	MinConfidence float64
	// DryRun computes decisions without inserting anything.
	DryRun bool
	// GroupID limits the run to transactions of one group.
	GroupID *string
	// RunID, when set, is stamped on every confirmed match row.
	RunID *uuid.UUID
	// ExcludedTransactionIDs and ExcludedRecordIDs hold already-confirmed
	// pairings loaded by the caller; both sides are skipped.
	ExcludedTransactionIDs map[uuid.UUID]bool
	ExcludedRecordIDs      map[uuid.UUID]bool
}

// Decision is one pairing the reconciler arrived at, confirmed or
// suggestion-only.
type Decision struct {
	TransactionID uuid.UUID         `json:"transaction_id"`
	RecordID      uuid.UUID         `json:"record_id"`
	RecordKind    models.RecordKind `json:"record_kind"`
	Status        string            `json:"status"`
	Score         float64           `json:"score"`
	Reasons       []string          `json:"reasons"`
}

// Result summarizes one batch run.
type Result struct {
	TotalProcessed int        `json:"total_processed"`
	Matched        int        `json:"matched"`
	Suggested      int        `json:"suggested"`
	Failed         int        `json:"failed"`
	Matches        []Decision `json:"matches"`
}

// BatchReconciler pairs unmatched transactions with unmatched records using
// a greedy per-transaction best pick: each transaction claims its best
// candidate in input order, auto-confirmed records leave the pool, and no
// backtracking happens. This is deliberately not a maximum-weight bipartite
// matching; the order-dependent behavior is part of the contract.
//
// The reconciler holds no locks around its read-compute-write sequence.
// Concurrent runs can both claim the same record; callers must serialize
// invocations if concurrent triggering is possible.
type BatchReconciler struct {
	store    MatchStore
	strategy ScoringStrategy
	logger   *slog.Logger
}

// NewBatchReconciler builds a reconciler over the given store.
func NewBatchReconciler(store MatchStore, logger *slog.Logger) *BatchReconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchReconciler{
		store:    store,
		strategy: AdditivePointStrategy{},
		logger:   logger,
	}
}

// expectedKind derives which record kind a transaction should reconcile
// against from the sign of its amount: money in matches income, money out
// matches expenses.
func expectedKind(tx *models.BankTransaction) models.RecordKind {
	if tx.Amount.IsPositive() {
		return models.KindIncome
	}
	return models.KindExpense
}

// Reconcile scores every remaining transaction against the remaining records
// of its expected kind, greedily commits pairs at or above the auto-confirm
// threshold and records suggestion-only decisions for the [SuggestThreshold,
// MinConfidence) band. Unless opts.DryRun, confirmed pairs go to the store in
// one bulk insert; if that insert fails every confirmed pair is reported as
// failed and the insert error is returned alongside the result.
func (r *BatchReconciler) Reconcile(ctx context.Context, txs []*models.BankTransaction, records []*models.FinancialRecord, opts Options) (*Result, error) {
	minConfidence := opts.MinConfidence
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}

	pool := make([]*models.FinancialRecord, 0, len(records))
	for _, rec := range records {
		if opts.ExcludedRecordIDs[rec.ID] {
			continue
		}
		pool = append(pool, rec)
	}
	consumed := make(map[uuid.UUID]bool)

	result := &Result{}
	var confirmed []*models.Match

	for _, tx := range txs {
		if opts.ExcludedTransactionIDs[tx.ID] {
			continue
		}
		if opts.GroupID != nil && (tx.GroupID == nil || *tx.GroupID != *opts.GroupID) {
			continue
		}
		result.TotalProcessed++

		kind := expectedKind(tx)
		var best *Breakdown
		var bestRecord *models.FinancialRecord
		for _, rec := range pool {
			if consumed[rec.ID] || rec.Kind != kind {
				continue
			}
			breakdown, ok := r.strategy.Score(tx, rec)
			if !ok {
				continue
			}
			// Strictly greater keeps the first record on ties.
			if best == nil || breakdown.Score > best.Score {
				b := breakdown
				best = &b
				bestRecord = rec
			}
		}

		if best == nil {
			continue
		}

		switch {
		case best.Score >= minConfidence:
			consumed[bestRecord.ID] = true
			result.Matched++
			result.Matches = append(result.Matches, Decision{
				TransactionID: tx.ID,
				RecordID:      bestRecord.ID,
				RecordKind:    bestRecord.Kind,
				Status:        models.MatchStatusConfirmed,
				Score:         best.Score,
				Reasons:       best.Reasons,
			})
			confirmed = append(confirmed, &models.Match{
				ID:            uuid.New(),
				TransactionID: tx.ID,
				RecordID:      bestRecord.ID,
				RunID:         opts.RunID,
				Status:        models.MatchStatusConfirmed,
				Confidence:    best.Score / 100,
				Reason:        strings.Join(best.Reasons, ", "),
				CreatedAt:     time.Now(),
			})
		case best.Score >= SuggestThreshold:
			// The record stays in the pool: a suggestion does not claim it.
			result.Suggested++
			result.Matches = append(result.Matches, Decision{
				TransactionID: tx.ID,
				RecordID:      bestRecord.ID,
				RecordKind:    bestRecord.Kind,
				Status:        models.MatchStatusSuggested,
				Score:         best.Score,
				Reasons:       best.Reasons,
			})
		}
	}

	if opts.DryRun || len(confirmed) == 0 {
		return result, nil
	}

	if err := r.store.BulkInsert(ctx, confirmed); err != nil {
		// No partial credit: the engine cannot tell a partial failure from
		// a total one, so the whole confirmed set moves to failed.
		r.logger.Error("bulk insert of confirmed matches failed",
			"pairs", len(confirmed), "error", err)
		result.Failed = result.Matched
		result.Matched = 0
		for i := range result.Matches {
			if result.Matches[i].Status == models.MatchStatusConfirmed {
				result.Matches[i].Status = models.MatchStatusFailed
			}
		}
		return result, fmt.Errorf("insert confirmed matches: %w", err)
	}

	r.logger.Info("batch reconciliation committed",
		"processed", result.TotalProcessed,
		"matched", result.Matched,
		"suggested", result.Suggested)
	return result, nil
}
