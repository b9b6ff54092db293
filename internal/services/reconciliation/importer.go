package reconciliation

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"traveldesk-backend/internal/models"
	"traveldesk-backend/internal/repository"
)

// Statement CSV columns: date, description, amount, reference, bank, group.
// Record CSV columns: kind, amount, date, vendor, invoice number,
// description, group. Malformed rows are skipped, not fatal.

// CreateUploadBatch opens a new statement import.
func (s *Service) CreateUploadBatch(filename string) (*models.UploadBatch, error) {
	batch := &models.UploadBatch{
		ID:        uuid.New(),
		Filename:  filename,
		Status:    "processing",
		StartedAt: time.Now(),
		CreatedAt: time.Now(),
	}
	if err := s.runStore.CreateUploadBatch(batch); err != nil {
		return nil, err
	}
	s.progressCache.Store(batch.ID, &Progress{Status: "processing"})
	return batch, nil
}

// ProcessStatementCSV imports one uploaded bank statement. It is meant to run
// in a background goroutine; progress lands in the cache every 100 rows.
func (s *Service) ProcessStatementCSV(batchID uuid.UUID, r io.Reader) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Skip header.
	if _, err := reader.Read(); err != nil {
		s.logger.Error("statement CSV unreadable", "batch_id", batchID, "error", err)
		s.finishUpload(batchID, 0)
		return
	}

	count := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if len(row) < 3 || strings.Join(row, "") == "" {
			continue
		}

		date, ok := parseDate(row[0])
		if !ok {
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(row[2]))
		if err != nil {
			continue
		}

		tx := &models.BankTransaction{
			ID:              uuid.New(),
			UploadBatchID:   batchID,
			TransactionDate: date,
			Description:     strings.TrimSpace(row[1]),
			Amount:          amount,
			Status:          models.TxStatusUnmatched,
			CreatedAt:       time.Now(),
		}
		if len(row) > 3 {
			tx.ReferenceNumber = strings.TrimSpace(row[3])
		}
		if len(row) > 4 {
			tx.BankName = strings.TrimSpace(row[4])
		}
		if len(row) > 5 {
			if group := strings.TrimSpace(row[5]); group != "" {
				tx.GroupID = &group
			}
		}

		if err := s.txStore.Create(tx); err != nil {
			s.logger.Error("statement row insert failed", "batch_id", batchID, "error", err)
			continue
		}
		count++

		if count%100 == 0 {
			s.progressCache.Store(batchID, &Progress{ProcessedCount: count, Status: "processing"})
			if err := s.runStore.UpdateBatchProgress(batchID, count); err != nil {
				s.logger.Error("progress update failed", "batch_id", batchID, "error", err)
			}
		}
	}

	s.finishUpload(batchID, count)
	s.logger.Info("statement import finished", "batch_id", batchID, "rows", count)
}

func (s *Service) finishUpload(batchID uuid.UUID, total int) {
	s.progressCache.Store(batchID, &Progress{ProcessedCount: total, Total: total, Status: "completed"})
	if err := s.runStore.MarkBatchCompleted(batchID, total); err != nil {
		s.logger.Error("batch completion failed", "batch_id", batchID, "error", err)
	}
}

// ImportRecordsCSV imports financial records synchronously and returns the
// inserted count.
func (s *Service) ImportRecordsCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		return 0, err
	}

	inserted := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if len(row) < 2 || strings.Join(row, "") == "" {
			continue
		}

		kind := models.RecordKind(strings.ToLower(strings.TrimSpace(row[0])))
		if !kind.IsValid() {
			continue
		}

		rec := &models.FinancialRecord{
			ID:        uuid.New(),
			Kind:      kind,
			Status:    models.RecordStatusOpen,
			CreatedAt: time.Now(),
		}
		if amount, err := decimal.NewFromString(strings.TrimSpace(row[1])); err == nil {
			rec.Amount = &amount
		}
		if len(row) > 2 {
			if date, ok := parseDate(row[2]); ok {
				rec.RecordDate = &date
			}
		}
		if len(row) > 3 {
			rec.VendorOrClient = strings.TrimSpace(row[3])
		}
		if len(row) > 4 {
			rec.InvoiceNumber = strings.TrimSpace(row[4])
		}
		if len(row) > 5 {
			rec.Description = strings.TrimSpace(row[5])
		}
		if len(row) > 6 {
			if group := strings.TrimSpace(row[6]); group != "" {
				rec.GroupID = &group
			}
		}

		if err := s.recordStore.Create(rec); err != nil {
			s.logger.Error("record row insert failed", "error", err)
			continue
		}
		inserted++
	}
	return inserted, nil
}

// parseDate accepts the two date layouts seen in agency exports.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02", "02-01-2006", "02/01/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UploadProgress reports a running import's state, falling back to the
// persisted batch row when the cache is cold (e.g. after a restart).
func (s *Service) UploadProgress(batchID uuid.UUID) (*Progress, error) {
	if cached, ok := s.progressCache.Load(batchID); ok {
		return cached.(*Progress), nil
	}
	batch, err := s.runStore.GetUploadBatch(batchID)
	if err != nil {
		return nil, err
	}
	return &Progress{
		ProcessedCount: batch.ProcessedCount,
		Total:          batch.TotalTransactions,
		Status:         batch.Status,
	}, nil
}

// BatchStats aggregates a batch's transactions by reconciliation status.
type BatchStats struct {
	Total       int64   `json:"total"`
	TotalAmount float64 `json:"total_amount"`

	UnmatchedCount int64   `json:"unmatched_count"`
	UnmatchedSum   float64 `json:"unmatched_sum"`

	SuggestedCount int64   `json:"suggested_count"`
	SuggestedSum   float64 `json:"suggested_sum"`

	MatchedCount int64   `json:"matched_count"`
	MatchedSum   float64 `json:"matched_sum"`

	ConfirmedCount int64   `json:"confirmed_count"`
	ConfirmedSum   float64 `json:"confirmed_sum"`

	ExternalCount int64   `json:"external_count"`
	ExternalSum   float64 `json:"external_sum"`
}

func (s *Service) GetBatchStats(batchID uuid.UUID) (BatchStats, error) {
	var stats BatchStats
	rows, err := s.runStore.BatchStats(batchID)
	if err != nil {
		return stats, err
	}

	for _, row := range rows {
		stats.Total += row.Count
		stats.TotalAmount += row.Sum
		switch row.Status {
		case models.TxStatusUnmatched:
			stats.UnmatchedCount, stats.UnmatchedSum = row.Count, row.Sum
		case models.TxStatusSuggested:
			stats.SuggestedCount, stats.SuggestedSum = row.Count, row.Sum
		case models.TxStatusMatched:
			stats.MatchedCount, stats.MatchedSum = row.Count, row.Sum
		case models.TxStatusConfirmed:
			stats.ConfirmedCount, stats.ConfirmedSum = row.Count, row.Sum
		case models.TxStatusExternal:
			stats.ExternalCount, stats.ExternalSum = row.Count, row.Sum
		}
	}
	return stats, nil
}

// ListTransactions pages through one batch's transactions.
func (s *Service) ListTransactions(opts repository.ListOptions) ([]models.BankTransaction, string, bool, error) {
	return s.txStore.ListByBatch(opts)
}

// SearchRecords is the fuzzy vendor search behind the manual match screen.
func (s *Service) SearchRecords(query string, limit int) ([]*models.FinancialRecord, error) {
	return s.recordStore.SearchByVendor(query, limit)
}

// CreateRecord inserts a single financial record.
func (s *Service) CreateRecord(rec *models.FinancialRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Status == "" {
		rec.Status = models.RecordStatusOpen
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	return s.recordStore.Create(rec)
}
