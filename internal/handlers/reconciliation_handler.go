// Package handler exposes the reconciliation service over HTTP.
package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"traveldesk-backend/internal/repository"
	service "traveldesk-backend/internal/services/reconciliation"
)

type ReconciliationHandler struct {
	service *service.Service
	logger  *slog.Logger

	// minConfidence is the configured auto-confirm default, used when a run
	// request does not set its own.
	minConfidence float64
}

func NewReconciliationHandler(s *service.Service, minConfidence float64, logger *slog.Logger) *ReconciliationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconciliationHandler{service: s, logger: logger, minConfidence: minConfidence}
}

// Upload receives a bank statement CSV, creates an upload batch and imports
// the rows in the background.
func (h *ReconciliationHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	// The multipart file is request-scoped: net/http deletes its disk
	// backing once the handler returns. Buffer it so the background import
	// owns its input.
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read upload"})
		return
	}

	batch, err := h.service.CreateUploadBatch(header.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("statement upload accepted", "batch_id", batch.ID, "filename", header.Filename, "size", header.Size)
	go h.service.ProcessStatementCSV(batch.ID, bytes.NewReader(data))

	c.JSON(http.StatusAccepted, gin.H{
		"batch_id": batch.ID.String(),
		"status":   "processing",
	})
}

// GetBatchProgress polls a background import.
func (h *ReconciliationHandler) GetBatchProgress(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	progress, err := h.service.UploadProgress(batchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}
	c.JSON(http.StatusOK, progress)
}

// ListTransactions pages through one batch's transactions with stats.
func (h *ReconciliationHandler) ListTransactions(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	items, nextCursor, hasMore, err := h.service.ListTransactions(repository.ListOptions{
		BatchID: batchID,
		Status:  c.Query("status"),
		Cursor:  c.Query("cursor"),
		Search:  c.Query("search"),
		Limit:   50,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.service.GetBatchStats(batchID)
	if err != nil {
		h.logger.Warn("batch stats unavailable", "batch_id", batchID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
		"stats":       stats,
	})
}

// RunBatch triggers a batch reconciliation run.
func (h *ReconciliationHandler) RunBatch(c *gin.Context) {
	var payload struct {
		MinConfidence float64 `json:"min_confidence"`
		DryRun        bool    `json:"dry_run"`
		GroupID       *string `json:"group_id"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	minConfidence := payload.MinConfidence
	if minConfidence <= 0 {
		minConfidence = h.minConfidence
	}

	result, run, err := h.service.RunBatch(c.Request.Context(), service.RunOptions{
		MinConfidence: minConfidence,
		DryRun:        payload.DryRun,
		GroupID:       payload.GroupID,
	})
	if err != nil {
		status := http.StatusInternalServerError
		body := gin.H{"error": err.Error()}
		if result != nil {
			// The result still carries the failed-pair accounting.
			body["result"] = result
			body["run_id"] = run.ID.String()
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id": run.ID.String(),
		"result": result,
	})
}

// GetRun returns a persisted run summary and the matches it committed.
func (h *ReconciliationHandler) GetRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("runId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run ID"})
		return
	}

	run, err := h.service.GetRun(runID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	matches, err := h.service.RunMatches(runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run, "matches": matches})
}

func parseLimit(c *gin.Context, fallback int) int {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
