package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kouden-gift-ledger/internal/api_server/middleware"
	"github.com/kouden-gift-ledger/internal/api_server/service"
)

// ReportHandler handles HTTP requests for summaries, archives, and
// duplicate detection
type ReportHandler struct {
	reportService    service.ReportService
	duplicateService service.DuplicateService
	logger           *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(logger *slog.Logger, reportService service.ReportService, duplicateService service.DuplicateService) *ReportHandler {
	return &ReportHandler{
		reportService:    reportService,
		duplicateService: duplicateService,
		logger:           logger,
	}
}

// Summarize computes the financial rollup for a record-book
func (h *ReportHandler) Summarize(c *gin.Context) {
	koudenID, ok := parseUUIDParam(c, "koudenId")
	if !ok {
		return
	}

	summary, err := h.reportService.Summarize(c.Request.Context(), koudenID)
	if err != nil {
		h.logger.Error("Failed to summarize record-book", "kouden_id", koudenID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, summary)
}

// Archive persists a fresh summary snapshot
func (h *ReportHandler) Archive(c *gin.Context) {
	koudenID, ok := parseUUIDParam(c, "koudenId")
	if !ok {
		return
	}

	archived, err := h.reportService.Archive(c.Request.Context(), koudenID)
	if err != nil {
		h.logger.Error("Failed to archive report", "kouden_id", koudenID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, archived)
}

// ListArchived retrieves paginated summary snapshots, newest first
func (h *ReportHandler) ListArchived(c *gin.Context) {
	koudenID, ok := parseUUIDParam(c, "koudenId")
	if !ok {
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	archived, total, err := h.reportService.ListArchived(c.Request.Context(), koudenID, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list archived reports", "kouden_id", koudenID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, archived, params.Page, params.PerPage, int(total))
}

// DetectDuplicates runs duplicate detection and rewrites the stored flags.
// Requires an authenticated caller.
func (h *ReportHandler) DetectDuplicates(c *gin.Context) {
	koudenID, ok := parseUUIDParam(c, "koudenId")
	if !ok {
		return
	}

	actorID := middleware.GetUserID(c)
	groups, err := h.duplicateService.DetectDuplicates(c.Request.Context(), actorID, koudenID)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			RespondUnauthorized(c, "Authentication required to run duplicate detection")
			return
		}
		h.logger.Error("Failed to detect duplicates", "kouden_id", koudenID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{"groups": groups, "group_count": len(groups)})
}
