package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kouden-gift-ledger/internal/api_server/service"
	"github.com/kouden-gift-ledger/internal/domain/schedule"
)

// ScheduleHandler handles HTTP requests for consultation scheduling
type ScheduleHandler struct {
	scheduleService service.ScheduleService
	logger          *slog.Logger
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(logger *slog.Logger, scheduleService service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		logger:          logger,
	}
}

// WeeklyAvailability returns the 7-day hourly availability grid. The week
// starts at the date given in week_start (YYYY-MM-DD, midnight UTC) or, when
// omitted, at today's midnight.
func (h *ScheduleHandler) WeeklyAvailability(c *gin.Context) {
	weekStart := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := c.Query("week_start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			RespondBadRequest(c, "Invalid week_start, expected YYYY-MM-DD")
			return
		}
		weekStart = parsed
	}

	days, err := h.scheduleService.WeeklyAvailability(c.Request.Context(), weekStart)
	if err != nil {
		h.logger.Error("Failed to build availability grid", "week_start", weekStart.Format("2006-01-02"), "error", err)
		RespondBadGateway(c, "Calendar service unavailable")
		return
	}

	RespondOK(c, gin.H{"week_start": weekStart.Format("2006-01-02"), "days": days})
}

// Reserve books a consultation slot on the calendar
func (h *ScheduleHandler) Reserve(c *gin.Context) {
	var req ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	r := &schedule.Reservation{
		Summary: req.Summary,
		Email:   req.Email,
		Notes:   req.Notes,
	}
	// Unset or malformed timestamps stay zero so validation can report them
	// alongside any other missing fields
	if req.Start != "" {
		if start, err := time.Parse(time.RFC3339, req.Start); err == nil {
			r.Start = start
		}
	}
	if req.End != "" {
		if end, err := time.Parse(time.RFC3339, req.End); err == nil {
			r.End = end
		}
	}

	if err := r.Validate(); err != nil {
		var missingErr schedule.ErrMissingFields
		if errors.As(err, &missingErr) {
			RespondBadRequest(c, missingErr.Error())
			return
		}
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.scheduleService.Reserve(c.Request.Context(), r); err != nil {
		h.logger.Error("Failed to create reservation", "error", err)
		RespondBadGateway(c, "Calendar service unavailable")
		return
	}

	RespondCreated(c, gin.H{"status": "reserved"})
}
