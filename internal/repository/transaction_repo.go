// Package repository holds the gorm-backed data access layer. The
// reconciliation engine itself never touches these types; the service layer
// wires them together.
package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"traveldesk-backend/internal/models"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(tx *models.BankTransaction) error {
	if err := r.db.Create(tx).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(id uuid.UUID) (*models.BankTransaction, error) {
	var tx models.BankTransaction
	if err := r.db.First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return &tx, nil
}

// ListUnmatched returns transactions still eligible for reconciliation,
// newest upload first, optionally narrowed to one group.
func (r *TransactionRepository) ListUnmatched(groupID *string) ([]*models.BankTransaction, error) {
	query := r.db.
		Where("status IN ?", []string{models.TxStatusUnmatched, models.TxStatusSuggested}).
		Order("transaction_date ASC, id ASC")
	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	}

	var txs []*models.BankTransaction
	if err := query.Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("list unmatched transactions: %w", err)
	}
	return txs, nil
}

// ListOptions drives cursor pagination over a batch's transactions.
type ListOptions struct {
	BatchID uuid.UUID
	Status  string
	Cursor  string
	Limit   int
	Search  string
}

// ListByBatch pages through one upload batch's transactions by id cursor,
// optionally filtered by status or a description/amount search.
func (r *TransactionRepository) ListByBatch(opts ListOptions) ([]models.BankTransaction, string, bool, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := r.db.
		Where("upload_batch_id = ?", opts.BatchID).
		Order("id ASC").
		Limit(limit + 1)

	if opts.Status != "" && opts.Status != "all" {
		query = query.Where("status = ?", opts.Status)
	}
	if opts.Cursor != "" {
		query = query.Where("id > ?", opts.Cursor)
	}
	if opts.Search != "" {
		like := "%" + opts.Search + "%"
		query = query.Where("description ILIKE ? OR CAST(amount AS TEXT) LIKE ?", like, like)
	}

	var txs []models.BankTransaction
	if err := query.Find(&txs).Error; err != nil {
		return nil, "", false, fmt.Errorf("list batch transactions: %w", err)
	}

	hasMore := false
	nextCursor := ""
	if len(txs) > limit {
		hasMore = true
		nextCursor = txs[limit-1].ID.String()
		txs = txs[:limit]
	}
	return txs, nextCursor, hasMore, nil
}

func (r *TransactionRepository) Save(tx *models.BankTransaction) error {
	if err := r.db.Save(tx).Error; err != nil {
		return fmt.Errorf("save transaction %s: %w", tx.ID, err)
	}
	return nil
}
