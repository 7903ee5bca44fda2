package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kouden-gift-ledger/internal/domain/entry"
	"github.com/kouden-gift-ledger/internal/domain/offering"
	"github.com/kouden-gift-ledger/internal/domain/report"
	"github.com/kouden-gift-ledger/internal/domain/schedule"
)

// ErrUnauthenticated indicates the caller did not present a user identity
var ErrUnauthenticated = errors.New("authentication required")

// TxRunner runs a function inside a database transaction
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// EntryService defines the interface for record-book entry operations
type EntryService interface {
	// CreateEntry records a new condolence gift in a record-book
	CreateEntry(ctx context.Context, koudenID uuid.UUID, name, organization string, amount int64, attendance entry.Attendance, status entry.ReturnStatus) (*entry.Entry, error)

	// GetEntry retrieves an entry by its ID
	// Returns ErrEntryNotFound if the entry doesn't exist
	GetEntry(ctx context.Context, id uuid.UUID) (*entry.Entry, error)

	// ListEntries retrieves a paginated list of entries for a record-book
	// Returns entries, total count, and any error
	ListEntries(ctx context.Context, koudenID uuid.UUID, page, perPage int) ([]*entry.Entry, int64, error)

	// UpdateEntry applies new field values with optimistic locking
	// Returns ErrConcurrentModification on a stale version
	UpdateEntry(ctx context.Context, id uuid.UUID, name, organization string, amount int64, attendance entry.Attendance, status entry.ReturnStatus) (*entry.Entry, error)

	// DeleteEntry soft-deletes an entry, removing it from all calculations
	DeleteEntry(ctx context.Context, id uuid.UUID) error

	// AllocateOffering attributes part of an offering's value to an entry
	AllocateOffering(ctx context.Context, entryID uuid.UUID, description string, amount int64) (*offering.Allocation, error)
}

// ReportService defines the interface for financial summary operations
type ReportService interface {
	// Summarize computes (or returns from cache) the full financial rollup
	// for a record-book. Failed offering lookups degrade to zero and are
	// listed in the summary's DegradedEntryIDs.
	Summarize(ctx context.Context, koudenID uuid.UUID) (*report.Summary, error)

	// Archive computes a fresh summary and persists it as a snapshot
	Archive(ctx context.Context, koudenID uuid.UUID) (*report.Archived, error)

	// ListArchived retrieves paginated snapshots, newest first
	ListArchived(ctx context.Context, koudenID uuid.UUID, page, perPage int) ([]*report.Archived, int64, error)
}

// DuplicateService defines the interface for duplicate entry detection
type DuplicateService interface {
	// DetectDuplicates groups active entries by identical trimmed names and
	// synchronizes the per-entry duplicate flags. Requires an authenticated
	// actor; returns ErrUnauthenticated otherwise.
	DetectDuplicates(ctx context.Context, actorID string, koudenID uuid.UUID) ([]entry.DuplicateGroup, error)
}

// ScheduleService defines the interface for consultation scheduling
type ScheduleService interface {
	// WeeklyAvailability overlays calendar busy periods onto a 7-day grid
	// of hourly slots starting at weekStart
	WeeklyAvailability(ctx context.Context, weekStart time.Time) ([]schedule.Day, error)

	// Reserve validates and books a consultation on the calendar
	Reserve(ctx context.Context, r *schedule.Reservation) error
}
