package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kouden-gift-ledger/internal/domain/entry"
	"github.com/kouden-gift-ledger/internal/platform/cache"
	"github.com/kouden-gift-ledger/internal/platform/messaging/producers"
)

// DuplicateServiceImpl implements the DuplicateService interface
type DuplicateServiceImpl struct {
	txRunner  TxRunner
	entryRepo entry.Repository
	cache     cache.Cache
	publisher producers.MessagePublisher
	logger    *slog.Logger
}

// NewDuplicateService creates a new duplicate detection service
func NewDuplicateService(logger *slog.Logger, txRunner TxRunner, entryRepo entry.Repository, c cache.Cache, publisher producers.MessagePublisher) DuplicateService {
	return &DuplicateServiceImpl{
		txRunner:  txRunner,
		entryRepo: entryRepo,
		cache:     c,
		publisher: publisher,
		logger:    logger,
	}
}

// DetectDuplicates groups active entries by identical trimmed names and
// rewrites the stored duplicate flags to match. Reset and set run in one
// transaction so a renamed entry cannot keep a stale flag.
func (s *DuplicateServiceImpl) DetectDuplicates(ctx context.Context, actorID string, koudenID uuid.UUID) ([]entry.DuplicateGroup, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	pairs, err := s.entryRepo.ListNamePairs(ctx, koudenID)
	if err != nil {
		return nil, err
	}

	groups := entry.FindDuplicateGroups(pairs)

	var duplicateIDs []uuid.UUID
	for _, g := range groups {
		duplicateIDs = append(duplicateIDs, g.IDs...)
	}

	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.entryRepo.WithTx(tx)
		if err := repo.ResetDuplicateFlags(ctx, koudenID); err != nil {
			return err
		}
		return repo.SetDuplicateFlags(ctx, duplicateIDs)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, summaryCacheKey(koudenID)); err != nil {
			s.logger.Warn("Failed to invalidate summary cache", "kouden_id", koudenID.String(), "error", err)
		}
	}

	publishAudit(ctx, s.logger, s.publisher, AuditEvent{
		Action:   AuditDuplicateCheckRun,
		KoudenID: koudenID.String(),
		Actor:    actorID,
	})

	s.logger.Info("Duplicate check completed",
		"kouden_id", koudenID.String(),
		"groups", len(groups),
		"flagged_entries", len(duplicateIDs),
	)

	return groups, nil
}
