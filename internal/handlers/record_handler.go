package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"traveldesk-backend/internal/models"
)

// UploadRecords imports a financial records CSV synchronously.
func (h *ReconciliationHandler) UploadRecords(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	inserted, err := h.service.ImportRecordsCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read CSV header"})
		return
	}

	h.logger.Info("records imported", "filename", header.Filename, "rows", inserted)
	c.JSON(http.StatusOK, gin.H{
		"file":          header.Filename,
		"records_added": inserted,
	})
}

// CreateRecord inserts a single financial record.
func (h *ReconciliationHandler) CreateRecord(c *gin.Context) {
	var payload struct {
		Kind           string  `json:"kind"`
		Amount         string  `json:"amount"`
		RecordDate     string  `json:"record_date"` // "2006-01-02"
		VendorOrClient string  `json:"vendor_or_client"`
		InvoiceNumber  string  `json:"invoice_number"`
		Description    string  `json:"description"`
		GroupID        *string `json:"group_id"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	kind := models.RecordKind(payload.Kind)
	if !kind.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be invoice, income or expense"})
		return
	}

	rec := &models.FinancialRecord{
		Kind:           kind,
		VendorOrClient: payload.VendorOrClient,
		InvoiceNumber:  payload.InvoiceNumber,
		Description:    payload.Description,
		GroupID:        payload.GroupID,
	}
	if payload.Amount != "" {
		amount, err := decimal.NewFromString(payload.Amount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		rec.Amount = &amount
	}
	if payload.RecordDate != "" {
		date, err := time.Parse("2006-01-02", payload.RecordDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record date, expected yyyy-mm-dd"})
			return
		}
		rec.RecordDate = &date
	}

	if err := h.service.CreateRecord(rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "record created", "record": rec})
}

// SearchRecords is the fuzzy vendor search used by the manual match screen.
func (h *ReconciliationHandler) SearchRecords(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q required"})
		return
	}

	records, err := h.service.SearchRecords(query, parseLimit(c, 10))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}
