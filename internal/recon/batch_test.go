package recon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traveldesk-backend/internal/models"
)

type fakeMatchStore struct {
	inserted []*models.Match
	calls    int
	err      error
}

func (f *fakeMatchStore) BulkInsert(_ context.Context, matches []*models.Match) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, matches...)
	return nil
}

func TestReconcile_AutoConfirmsAndRemovesFromPool(t *testing.T) {
	date := day(2024, time.April, 2)
	store := &fakeMatchStore{}
	reconciler := NewBatchReconciler(store, nil)

	// Exact amount + same date + full name: 90 points, above the default
	// threshold of 80.
	tx := testTx("-350.00", date, "aegean airlines")
	rec := testRecord(models.KindExpense, "350.00", datePtr(date), "Aegean Airlines")

	result, err := reconciler.Reconcile(context.Background(),
		[]*models.BankTransaction{tx}, []*models.FinancialRecord{rec}, Options{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalProcessed)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 0, result.Suggested)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, tx.ID, store.inserted[0].TransactionID)
	assert.Equal(t, rec.ID, store.inserted[0].RecordID)
	assert.Equal(t, models.MatchStatusConfirmed, store.inserted[0].Status)
	assert.InDelta(t, 0.9, store.inserted[0].Confidence, 1e-9)
}

func TestReconcile_SuggestionBandKeepsRecordInPool(t *testing.T) {
	date := day(2024, time.April, 2)
	store := &fakeMatchStore{}
	reconciler := NewBatchReconciler(store, nil)

	// Exact amount + month-old date: 60 points for both transactions, in
	// the suggest-only band. Both may point at the same record because a
	// suggestion never claims it.
	rec := testRecord(models.KindExpense, "80.00", datePtr(date.AddDate(0, 0, -20)), "")
	tx1 := testTx("-80.00", date, "")
	tx2 := testTx("-80.00", date, "")

	result, err := reconciler.Reconcile(context.Background(),
		[]*models.BankTransaction{tx1, tx2}, []*models.FinancialRecord{rec}, Options{})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Matched)
	assert.Equal(t, 2, result.Suggested)
	assert.Zero(t, store.calls, "suggestion-only runs must not touch the store")
	require.Len(t, result.Matches, 2)
	assert.Equal(t, rec.ID, result.Matches[0].RecordID)
	assert.Equal(t, rec.ID, result.Matches[1].RecordID)
	for _, m := range result.Matches {
		assert.Equal(t, models.MatchStatusSuggested, m.Status)
	}
}

func TestReconcile_GreedyOrderDependentAssignment(t *testing.T) {
	date := day(2024, time.April, 2)
	store := &fakeMatchStore{}
	reconciler := NewBatchReconciler(store, nil)

	// Three transactions, two records. tx1 and tx2 both score 85 against
	// recA; tx1 is first in input order so it claims recA, tx2 falls back
	// to recB (75 points -> suggested), tx3 matches nothing.
	recA := testRecord(models.KindExpense, "500.00", datePtr(date), "Olympic Hotels")
	recB := testRecord(models.KindExpense, "500.00", datePtr(date.AddDate(0, 0, -2)), "")
	tx1 := testTx("-500.00", date, "olympic hotels payment")
	tx2 := testTx("-500.00", date, "olympic hotels payment")
	tx3 := testTx("-77.13", date, "parking")

	result, err := reconciler.Reconcile(context.Background(),
		[]*models.BankTransaction{tx1, tx2, tx3},
		[]*models.FinancialRecord{recA, recB}, Options{MinConfidence: 80})

	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.Suggested)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, tx1.ID, result.Matches[0].TransactionID)
	assert.Equal(t, recA.ID, result.Matches[0].RecordID)
	assert.Equal(t, models.MatchStatusConfirmed, result.Matches[0].Status)
	assert.Equal(t, tx2.ID, result.Matches[1].TransactionID)
	assert.Equal(t, recB.ID, result.Matches[1].RecordID)
	assert.Equal(t, models.MatchStatusSuggested, result.Matches[1].Status)

	// Mutual exclusion inside the run: no record is confirmed twice.
	seen := map[uuid.UUID]bool{}
	for _, m := range result.Matches {
		if m.Status != models.MatchStatusConfirmed {
			continue
		}
		assert.False(t, seen[m.RecordID], "record %s confirmed twice", m.RecordID)
		seen[m.RecordID] = true
	}
}

func TestReconcile_InsertFailureFailsWholeBatch(t *testing.T) {
	date := day(2024, time.April, 2)
	store := &fakeMatchStore{err: errors.New("connection reset")}
	reconciler := NewBatchReconciler(store, nil)

	var txs []*models.BankTransaction
	var records []*models.FinancialRecord
	for i := 0; i < 3; i++ {
		rec := testRecord(models.KindExpense, "100.00", datePtr(date), "Aegean Airlines")
		records = append(records, rec)
		txs = append(txs, testTx("-100.00", date, "aegean airlines"))
	}

	result, err := reconciler.Reconcile(context.Background(), txs, records, Options{})

	require.Error(t, err)
	assert.Equal(t, 0, result.Matched)
	assert.Equal(t, 3, result.Failed)
	for _, m := range result.Matches {
		assert.Equal(t, models.MatchStatusFailed, m.Status)
	}
}

func TestReconcile_DryRunSkipsStore(t *testing.T) {
	date := day(2024, time.April, 2)
	store := &fakeMatchStore{}
	reconciler := NewBatchReconciler(store, nil)

	tx := testTx("-350.00", date, "aegean airlines")
	rec := testRecord(models.KindExpense, "350.00", datePtr(date), "Aegean Airlines")

	result, err := reconciler.Reconcile(context.Background(),
		[]*models.BankTransaction{tx}, []*models.FinancialRecord{rec}, Options{DryRun: true})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Matched)
	assert.Zero(t, store.calls)
}

func TestReconcile_ExpectedKindFollowsSign(t *testing.T) {
	date := day(2024, time.April, 2)
	store := &fakeMatchStore{}
	reconciler := NewBatchReconciler(store, nil)

	// The deposit must ignore the expense record and match the income
	// record, even though both carry identical fields otherwise.
	expense := testRecord(models.KindExpense, "900.00", datePtr(date), "Papadopoulos Tours")
	income := testRecord(models.KindIncome, "900.00", datePtr(date), "Papadopoulos Tours")
	deposit := testTx("900.00", date, "papadopoulos tours deposit")

	result, err := reconciler.Reconcile(context.Background(),
		[]*models.BankTransaction{deposit},
		[]*models.FinancialRecord{expense, income}, Options{})

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, income.ID, result.Matches[0].RecordID)
}

func TestReconcile_ExclusionsAndGroupFilter(t *testing.T) {
	date := day(2024, time.April, 2)
	store := &fakeMatchStore{}
	reconciler := NewBatchReconciler(store, nil)

	grouped := testTx("-60.00", date, "")
	grouped.GroupID = strPtr("PKG-1")
	ungrouped := testTx("-60.00", date, "")
	alreadyMatched := testTx("-60.00", date, "")
	alreadyMatched.GroupID = strPtr("PKG-1")

	rec := testRecord(models.KindExpense, "60.00", datePtr(date), "")
	usedRec := testRecord(models.KindExpense, "60.00", datePtr(date), "")

	result, err := reconciler.Reconcile(context.Background(),
		[]*models.BankTransaction{ungrouped, alreadyMatched, grouped},
		[]*models.FinancialRecord{usedRec, rec},
		Options{
			GroupID:                strPtr("PKG-1"),
			ExcludedTransactionIDs: map[uuid.UUID]bool{alreadyMatched.ID: true},
			ExcludedRecordIDs:      map[uuid.UUID]bool{usedRec.ID: true},
		})

	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalProcessed, "group filter and exclusions trim the input")
	require.Len(t, result.Matches, 1)
	assert.Equal(t, grouped.ID, result.Matches[0].TransactionID)
	assert.Equal(t, rec.ID, result.Matches[0].RecordID)
}
