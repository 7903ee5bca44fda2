package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/kouden-gift-ledger/internal/domain/entry"
	"github.com/kouden-gift-ledger/internal/domain/offering"
	"github.com/kouden-gift-ledger/internal/domain/report"
	"github.com/kouden-gift-ledger/internal/platform/cache"
	"github.com/kouden-gift-ledger/internal/platform/messaging/producers"
)

// ReportServiceImpl implements the ReportService interface. Offering totals
// are fetched concurrently through a bounded worker pool so a record-book
// with hundreds of entries does not serialize hundreds of lookups.
type ReportServiceImpl struct {
	entryRepo     entry.Repository
	offeringRepo  offering.Repository
	archiveRepo   report.ArchiveRepository
	cache         cache.Cache
	publisher     producers.MessagePublisher
	pool          *ants.Pool
	logger        *slog.Logger
	summaryTTL    time.Duration
	lookupTimeout time.Duration
}

// NewReportService creates a new report service with its own worker pool
func NewReportService(
	logger *slog.Logger,
	entryRepo entry.Repository,
	offeringRepo offering.Repository,
	archiveRepo report.ArchiveRepository,
	c cache.Cache,
	publisher producers.MessagePublisher,
	poolSize int,
	lookupTimeout time.Duration,
	summaryTTL time.Duration,
) (*ReportServiceImpl, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	return &ReportServiceImpl{
		entryRepo:     entryRepo,
		offeringRepo:  offeringRepo,
		archiveRepo:   archiveRepo,
		cache:         c,
		publisher:     publisher,
		pool:          pool,
		logger:        logger,
		summaryTTL:    summaryTTL,
		lookupTimeout: lookupTimeout,
	}, nil
}

func summaryCacheKey(koudenID uuid.UUID) string {
	return "kouden:summary:" + koudenID.String()
}

// Summarize computes the full financial rollup for a record-book, serving
// from cache when a fresh copy exists
func (s *ReportServiceImpl) Summarize(ctx context.Context, koudenID uuid.UUID) (*report.Summary, error) {
	if s.cache != nil {
		var cached report.Summary
		err := cache.GetJSON(ctx, s.cache, summaryCacheKey(koudenID), &cached)
		if err == nil {
			s.logger.Debug("Summary cache hit", "kouden_id", koudenID.String())
			return &cached, nil
		}
		if err != cache.ErrNotFound {
			s.logger.Warn("Summary cache read failed", "kouden_id", koudenID.String(), "error", err)
		}
	}

	summary, err := s.compute(ctx, koudenID)
	if err != nil {
		return nil, err
	}

	// Partial results are never cached: a later request should retry the
	// failed offering lookups rather than serve degraded data for the TTL.
	if s.cache != nil && len(summary.DegradedEntryIDs) == 0 {
		if err := cache.SetJSON(ctx, s.cache, summaryCacheKey(koudenID), summary, s.summaryTTL); err != nil {
			s.logger.Warn("Summary cache write failed", "kouden_id", koudenID.String(), "error", err)
		}
	}

	return summary, nil
}

// Archive computes a fresh summary (bypassing the cache) and persists it
func (s *ReportServiceImpl) Archive(ctx context.Context, koudenID uuid.UUID) (*report.Archived, error) {
	summary, err := s.compute(ctx, koudenID)
	if err != nil {
		return nil, err
	}

	archived := report.NewArchived(summary)
	if err := s.archiveRepo.Create(ctx, archived); err != nil {
		return nil, err
	}

	publishAudit(ctx, s.logger, s.publisher, AuditEvent{
		Action:   AuditReportArchived,
		KoudenID: koudenID.String(),
	})

	return archived, nil
}

// ListArchived retrieves paginated snapshots, newest first
func (s *ReportServiceImpl) ListArchived(ctx context.Context, koudenID uuid.UUID, page, perPage int) ([]*report.Archived, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.archiveRepo.ListByKouden(ctx, koudenID, page, perPage)
}

func (s *ReportServiceImpl) compute(ctx context.Context, koudenID uuid.UUID) (*report.Summary, error) {
	entries, err := s.entryRepo.ListActiveByKouden(ctx, koudenID)
	if err != nil {
		return nil, err
	}

	totals, degraded := s.offeringTotals(ctx, entries)

	return report.BuildSummary(koudenID, entries, totals, degraded, report.DefaultAmountBands())
}

// offeringTotals fans out one lookup per entry through the worker pool.
// A failed or timed-out lookup contributes 0 and lands in the degraded list,
// keeping the summary available when the offering store is struggling.
func (s *ReportServiceImpl) offeringTotals(ctx context.Context, entries []*entry.Entry) (map[uuid.UUID]int64, []uuid.UUID) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		totals   = make(map[uuid.UUID]int64, len(entries))
		degraded []uuid.UUID
	)

	for _, e := range entries {
		e := e
		wg.Add(1)
		task := func() {
			defer wg.Done()

			lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
			defer cancel()

			total, err := s.offeringRepo.TotalForEntry(lookupCtx, e.ID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("Offering lookup failed, defaulting to zero",
					"entry_id", e.ID.String(),
					"error", err,
				)
				totals[e.ID] = 0
				degraded = append(degraded, e.ID)
				return
			}
			totals[e.ID] = total
		}

		if err := s.pool.Submit(task); err != nil {
			// Pool saturated or released: run inline rather than drop the lookup
			task()
		}
	}

	wg.Wait()
	return totals, degraded
}

// Shutdown releases the worker pool
func (s *ReportServiceImpl) Shutdown() {
	s.logger.Info("Shutting down report worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

var _ ReportService = (*ReportServiceImpl)(nil)
