package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/kouden-gift-ledger/internal/platform/messaging/producers"
)

// Audit event actions
const (
	AuditEntryCreated      = "entry.created"
	AuditEntryUpdated      = "entry.updated"
	AuditEntryDeleted      = "entry.deleted"
	AuditOfferingAllocated = "offering.allocated"
	AuditDuplicateCheckRun = "duplicate_check.run"
	AuditReportArchived    = "report.archived"
)

// AuditEvent is the payload published to the audit topic for every mutation
type AuditEvent struct {
	Action     string    `json:"action"`
	KoudenID   string    `json:"kouden_id,omitempty"`
	EntryID    string    `json:"entry_id,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publishAudit sends an audit event best-effort. Failures are logged and
// never propagated; audit must not break the operation it describes.
func publishAudit(ctx context.Context, logger *slog.Logger, publisher producers.MessagePublisher, event AuditEvent) {
	if publisher == nil {
		return
	}
	event.OccurredAt = time.Now()
	if err := publisher.Publish(ctx, event.Action, event); err != nil {
		logger.Warn("Failed to publish audit event", "action", event.Action, "error", err)
	}
}
