package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"traveldesk-backend/internal/config"
	handler "traveldesk-backend/internal/handlers"
	"traveldesk-backend/internal/logging"
	"traveldesk-backend/internal/repository"
	service "traveldesk-backend/internal/services/reconciliation"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, logger *slog.Logger) {
	txRepo := repository.NewTransactionRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	runRepo := repository.NewRunRepository(db)

	reconService := service.NewService(
		txRepo,
		recordRepo,
		matchRepo,
		runRepo,
		cfg.Recon.MaxSuggestions,
		logger,
	)

	reconHandler := handler.NewReconciliationHandler(
		reconService,
		cfg.Recon.MinConfidence,
		logging.NewWithSystem(cfg.Logging, "api"),
	)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Reconciliation routes
	recon := api.Group("/reconciliation")
	recon.POST("/upload", reconHandler.Upload)
	recon.POST("/run", reconHandler.RunBatch)
	recon.GET("/runs/:runId", reconHandler.GetRun)
	recon.GET("/batches/:batchId", reconHandler.GetBatchProgress)
	recon.GET("/batches/:batchId/transactions", reconHandler.ListTransactions)

	// Transaction-level routes
	tx := api.Group("/transactions")
	tx.GET("/:id/suggestions", reconHandler.Suggestions)
	tx.POST("/:id/confirm", reconHandler.ConfirmTransaction)
	tx.POST("/:id/reject", reconHandler.RejectTransaction)
	tx.POST("/:id/match", reconHandler.ManualMatchTransaction)
	tx.POST("/:id/external", reconHandler.MarkTransactionExternal)

	// Financial record routes
	records := api.Group("/records")
	{
		records.POST("", reconHandler.CreateRecord)
		records.POST("/upload", reconHandler.UploadRecords)
		records.GET("/search", reconHandler.SearchRecords)
	}
}
