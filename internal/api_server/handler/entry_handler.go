package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kouden-gift-ledger/internal/api_server/service"
	"github.com/kouden-gift-ledger/internal/domain/entry"
)

// EntryHandler handles HTTP requests for record-book entries
type EntryHandler struct {
	entryService service.EntryService
	logger       *slog.Logger
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(logger *slog.Logger, entryService service.EntryService) *EntryHandler {
	return &EntryHandler{
		entryService: entryService,
		logger:       logger,
	}
}

// Create handles recording a new entry in a record-book
func (h *EntryHandler) Create(c *gin.Context) {
	koudenID, ok := parseUUIDParam(c, "koudenId")
	if !ok {
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	e, err := h.entryService.CreateEntry(c.Request.Context(), koudenID, req.Name, req.Organization, req.Amount,
		entry.Attendance(req.Attendance), entry.ReturnStatus(req.ReturnStatus))
	if err != nil {
		if errors.Is(err, entry.ErrNegativeAmount) || errors.Is(err, entry.ErrMissingKouden) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create entry", "kouden_id", koudenID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapEntryToResponse(e))
}

// GetByID retrieves an entry by its ID, returning 404 if not found
func (h *EntryHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	e, err := h.entryService.GetEntry(c.Request.Context(), id)
	if err != nil {
		var notFoundErr entry.ErrEntryNotFound
		if errors.As(err, &notFoundErr) {
			RespondNotFound(c, "Entry not found")
			return
		}
		h.logger.Error("Failed to get entry", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapEntryToResponse(e))
}

// ListByKouden retrieves a paginated list of entries for a record-book
func (h *EntryHandler) ListByKouden(c *gin.Context) {
	koudenID, ok := parseUUIDParam(c, "koudenId")
	if !ok {
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	entries, total, err := h.entryService.ListEntries(c.Request.Context(), koudenID, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list entries", "kouden_id", koudenID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, mapEntryToResponse(e))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage, int(total))
}

// Update handles modifying an existing entry
func (h *EntryHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	e, err := h.entryService.UpdateEntry(c.Request.Context(), id, req.Name, req.Organization, req.Amount,
		entry.Attendance(req.Attendance), entry.ReturnStatus(req.ReturnStatus))
	if err != nil {
		var notFoundErr entry.ErrEntryNotFound
		if errors.As(err, &notFoundErr) {
			RespondNotFound(c, "Entry not found")
			return
		}
		var concurrentErr entry.ErrConcurrentModification
		if errors.As(err, &concurrentErr) {
			RespondConflict(c, "Entry was modified by another request, please retry")
			return
		}
		if errors.Is(err, entry.ErrNegativeAmount) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to update entry", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapEntryToResponse(e))
}

// Delete handles soft-deleting an entry
func (h *EntryHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.entryService.DeleteEntry(c.Request.Context(), id); err != nil {
		var notFoundErr entry.ErrEntryNotFound
		if errors.As(err, &notFoundErr) {
			RespondNotFound(c, "Entry not found")
			return
		}
		h.logger.Error("Failed to delete entry", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// AllocateOffering handles attributing offering value to an entry
func (h *EntryHandler) AllocateOffering(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req AllocateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	a, err := h.entryService.AllocateOffering(c.Request.Context(), id, req.Description, req.Amount)
	if err != nil {
		var notFoundErr entry.ErrEntryNotFound
		if errors.As(err, &notFoundErr) {
			RespondNotFound(c, "Entry not found")
			return
		}
		h.logger.Error("Failed to allocate offering", "entry_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, AllocationResponse{
		ID:          a.ID.String(),
		EntryID:     a.EntryID.String(),
		Description: a.Description,
		Amount:      a.Amount,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	})
}

// parseUUIDParam parses a UUID path parameter, responding 400 on failure
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondBadRequest(c, "Invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}

// mapEntryToResponse maps an entry entity to an entry response DTO
func mapEntryToResponse(e *entry.Entry) EntryResponse {
	return EntryResponse{
		ID:           e.ID.String(),
		KoudenID:     e.KoudenID.String(),
		Name:         e.Name,
		Organization: e.Organization,
		Amount:       e.Amount,
		Attendance:   string(e.Attendance),
		ReturnStatus: string(e.ReturnStatus),
		IsDuplicate:  e.IsDuplicate,
		Version:      e.Version,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    e.UpdatedAt.Format(time.RFC3339),
	}
}
