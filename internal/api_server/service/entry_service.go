package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kouden-gift-ledger/internal/domain/entry"
	"github.com/kouden-gift-ledger/internal/domain/offering"
	"github.com/kouden-gift-ledger/internal/platform/cache"
	"github.com/kouden-gift-ledger/internal/platform/messaging/producers"
)

// EntryServiceImpl implements the EntryService interface
type EntryServiceImpl struct {
	entryRepo    entry.Repository
	offeringRepo offering.Repository
	cache        cache.Cache
	publisher    producers.MessagePublisher
	logger       *slog.Logger
}

// NewEntryService creates a new entry service
func NewEntryService(logger *slog.Logger, entryRepo entry.Repository, offeringRepo offering.Repository, c cache.Cache, publisher producers.MessagePublisher) EntryService {
	return &EntryServiceImpl{
		entryRepo:    entryRepo,
		offeringRepo: offeringRepo,
		cache:        c,
		publisher:    publisher,
		logger:       logger,
	}
}

// CreateEntry records a new condolence gift and invalidates the cached summary
func (s *EntryServiceImpl) CreateEntry(ctx context.Context, koudenID uuid.UUID, name, organization string, amount int64, attendance entry.Attendance, status entry.ReturnStatus) (*entry.Entry, error) {
	e, err := entry.NewEntry(koudenID, name, organization, amount, attendance, status)
	if err != nil {
		return nil, err
	}

	if err := s.entryRepo.Create(ctx, e); err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, koudenID)
	publishAudit(ctx, s.logger, s.publisher, AuditEvent{
		Action:   AuditEntryCreated,
		KoudenID: koudenID.String(),
		EntryID:  e.ID.String(),
	})

	return e, nil
}

// GetEntry retrieves an entry by its ID
func (s *EntryServiceImpl) GetEntry(ctx context.Context, id uuid.UUID) (*entry.Entry, error) {
	return s.entryRepo.GetByID(ctx, id)
}

// ListEntries retrieves a paginated list of entries for a record-book
func (s *EntryServiceImpl) ListEntries(ctx context.Context, koudenID uuid.UUID, page, perPage int) ([]*entry.Entry, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.entryRepo.ListByKouden(ctx, koudenID, page, perPage)
}

// UpdateEntry applies new field values using optimistic locking
func (s *EntryServiceImpl) UpdateEntry(ctx context.Context, id uuid.UUID, name, organization string, amount int64, attendance entry.Attendance, status entry.ReturnStatus) (*entry.Entry, error) {
	e, err := s.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := e.Update(name, organization, amount, attendance, status); err != nil {
		return nil, err
	}

	if err := s.entryRepo.Update(ctx, e); err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, e.KoudenID)
	publishAudit(ctx, s.logger, s.publisher, AuditEvent{
		Action:   AuditEntryUpdated,
		KoudenID: e.KoudenID.String(),
		EntryID:  e.ID.String(),
	})

	return e, nil
}

// DeleteEntry soft-deletes an entry, removing it from all calculations
func (s *EntryServiceImpl) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	e, err := s.entryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.entryRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.invalidateSummary(ctx, e.KoudenID)
	publishAudit(ctx, s.logger, s.publisher, AuditEvent{
		Action:   AuditEntryDeleted,
		KoudenID: e.KoudenID.String(),
		EntryID:  id.String(),
	})

	return nil
}

// AllocateOffering attributes part of an offering's value to an entry.
// The entry must exist and not be deleted.
func (s *EntryServiceImpl) AllocateOffering(ctx context.Context, entryID uuid.UUID, description string, amount int64) (*offering.Allocation, error) {
	e, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if e.DeletedAt != nil {
		return nil, entry.ErrEntryNotFound{EntryID: entryID}
	}

	a, err := offering.NewAllocation(entryID, description, amount)
	if err != nil {
		return nil, err
	}

	if err := s.offeringRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, e.KoudenID)
	publishAudit(ctx, s.logger, s.publisher, AuditEvent{
		Action:   AuditOfferingAllocated,
		KoudenID: e.KoudenID.String(),
		EntryID:  entryID.String(),
	})

	return a, nil
}

// invalidateSummary drops the cached summary after any mutation that could
// change the rollup. Best-effort: a stale cache expires via TTL anyway.
func (s *EntryServiceImpl) invalidateSummary(ctx context.Context, koudenID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, summaryCacheKey(koudenID)); err != nil {
		s.logger.Warn("Failed to invalidate summary cache", "kouden_id", koudenID.String(), "error", err)
	}
}
