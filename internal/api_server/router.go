package api_server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kouden-gift-ledger/internal/api_server/handler"
	"github.com/kouden-gift-ledger/internal/api_server/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	entryHandler *handler.EntryHandler,
	reportHandler *handler.ReportHandler,
	scheduleHandler *handler.ScheduleHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Identity())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Record-book scoped operations
		koudens := v1.Group("/koudens/:koudenId")
		{
			koudens.POST("/entries", entryHandler.Create)
			koudens.GET("/entries", entryHandler.ListByKouden)
			koudens.GET("/summary", reportHandler.Summarize)
			koudens.POST("/duplicates", reportHandler.DetectDuplicates)
			koudens.POST("/reports", reportHandler.Archive)
			koudens.GET("/reports", reportHandler.ListArchived)
		}

		// Entry operations
		entries := v1.Group("/entries")
		{
			entries.GET("/:id", entryHandler.GetByID)
			entries.PUT("/:id", entryHandler.Update)
			entries.DELETE("/:id", entryHandler.Delete)
			entries.POST("/:id/offerings", entryHandler.AllocateOffering)
		}

		// Consultation scheduling
		v1.GET("/availability", scheduleHandler.WeeklyAvailability)
		v1.POST("/reservations", scheduleHandler.Reserve)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
