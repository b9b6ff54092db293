package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordKind tags the variant of a financial record.
type RecordKind string

const (
	KindInvoice RecordKind = "invoice"
	KindIncome  RecordKind = "income"
	KindExpense RecordKind = "expense"
)

// IsValid reports whether k is one of the known kinds.
func (k RecordKind) IsValid() bool {
	return k == KindInvoice || k == KindIncome || k == KindExpense
}

func (k RecordKind) String() string { return string(k) }

// Record lifecycle status.
const (
	RecordStatusOpen    = "open"
	RecordStatusMatched = "matched"
	RecordStatusVoid    = "void"
)

// FinancialRecord is an invoice, income entry or expense entry that a bank
// transaction can be reconciled against. Amount is an unsigned magnitude;
// the kind carries the direction. Amount and RecordDate are nullable because
// imported records are often incomplete — the scorers degrade instead of
// rejecting them.
type FinancialRecord struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Kind           RecordKind       `gorm:"type:varchar(16);index" json:"kind"`
	Amount         *decimal.Decimal `gorm:"type:numeric(14,2);index" json:"amount,omitempty"`
	RecordDate     *time.Time       `json:"record_date,omitempty"`
	VendorOrClient string           `gorm:"index" json:"vendor_or_client"`
	InvoiceNumber  string           `gorm:"index" json:"invoice_number"`
	Description    string           `json:"description"`
	GroupID        *string          `gorm:"index" json:"group_id,omitempty"`
	Status         string           `gorm:"index" json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ComparableText returns the free text used for text-similarity scoring,
// preferring the vendor/client name over the description.
func (r *FinancialRecord) ComparableText() string {
	if r.VendorOrClient != "" {
		return r.VendorOrClient
	}
	return r.Description
}
