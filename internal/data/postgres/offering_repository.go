package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kouden-gift-ledger/internal/domain/offering"
	"github.com/kouden-gift-ledger/internal/platform/persistence"
)

// OfferingRepository implements the offering.Repository interface for PostgreSQL
type OfferingRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewOfferingRepository creates a new PostgreSQL offering repository
func NewOfferingRepository(logger *slog.Logger, db *persistence.PostgresDB) offering.Repository {
	return &OfferingRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create stores a new offering allocation
func (r *OfferingRepository) Create(ctx context.Context, a *offering.Allocation) error {
	query := `
		INSERT INTO offering_allocations (id, entry_id, description, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query,
		a.ID,
		a.EntryID,
		a.Description,
		a.Amount,
		a.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create offering allocation", "error", err)
		return fmt.Errorf("failed to create offering allocation: %w", err)
	}

	return nil
}

// TotalForEntry returns the sum of offering amounts allocated to an entry.
// Entries with no allocations total zero.
func (r *OfferingRepository) TotalForEntry(ctx context.Context, entryID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM offering_allocations
		WHERE entry_id = $1
	`

	var total int64
	if err := r.querier.QueryRow(ctx, query, entryID).Scan(&total); err != nil {
		r.logger.Error("Failed to total offering allocations", "entry_id", entryID.String(), "error", err)
		return 0, fmt.Errorf("failed to total offering allocations: %w", err)
	}

	return total, nil
}
