// Package postgres provides PostgreSQL implementations of the domain repositories.
// It handles all database operations while maintaining transaction safety and
// proper error handling for the kouden ledger system.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kouden-gift-ledger/internal/domain/entry"
	"github.com/kouden-gift-ledger/internal/platform/persistence"
)

// EntryRepository implements the entry.Repository interface for PostgreSQL
type EntryRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewEntryRepository creates a new PostgreSQL entry repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewEntryRepository(logger *slog.Logger, db *persistence.PostgresDB) entry.Repository {
	return &EntryRepository{
		querier: db.Pool(), // Initialize with the pool
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic operations
// across multiple repository calls
func (r *EntryRepository) WithTx(tx pgx.Tx) entry.Repository {
	return &EntryRepository{
		querier: tx, // Use the transaction
		logger:  r.logger,
	}
}

const entryColumns = `id, kouden_id, name, organization, amount, attendance, return_status, is_duplicate, version, created_at, updated_at, deleted_at`

func scanEntry(row pgx.Row) (*entry.Entry, error) {
	var e entry.Entry
	err := row.Scan(
		&e.ID,
		&e.KoudenID,
		&e.Name,
		&e.Organization,
		&e.Amount,
		&e.Attendance,
		&e.ReturnStatus,
		&e.IsDuplicate,
		&e.Version,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create stores a new entry in the database
func (r *EntryRepository) Create(ctx context.Context, e *entry.Entry) error {
	query := `
		INSERT INTO entries (id, kouden_id, name, organization, amount, attendance, return_status, is_duplicate, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.querier.Exec(ctx, query,
		e.ID,
		e.KoudenID,
		e.Name,
		e.Organization,
		e.Amount,
		e.Attendance,
		e.ReturnStatus,
		e.IsDuplicate,
		e.Version,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create entry", "error", err)
		return fmt.Errorf("failed to create entry: %w", err)
	}

	return nil
}

// GetByID retrieves an entry by its ID, soft-deleted rows included for audit paths
func (r *EntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entry.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE id = $1
	`

	e, err := scanEntry(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entry.ErrEntryNotFound{EntryID: id}
		}
		r.logger.Error("Failed to get entry", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return e, nil
}

// ListActiveByKouden retrieves all non-deleted entries for a record-book,
// oldest first, matching entry-sheet display order
func (r *EntryRepository) ListActiveByKouden(ctx context.Context, koudenID uuid.UUID) ([]*entry.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE kouden_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.querier.Query(ctx, query, koudenID)
	if err != nil {
		r.logger.Error("Failed to list entries", "kouden_id", koudenID.String(), "error", err)
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*entry.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}

	return entries, nil
}

// ListByKouden retrieves a page of non-deleted entries plus the total count
func (r *EntryRepository) ListByKouden(ctx context.Context, koudenID uuid.UUID, page, perPage int) ([]*entry.Entry, int64, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM entries
		WHERE kouden_id = $1 AND deleted_at IS NULL
	`

	var total int64
	if err := r.querier.QueryRow(ctx, countQuery, koudenID).Scan(&total); err != nil {
		r.logger.Error("Failed to count entries", "kouden_id", koudenID.String(), "error", err)
		return nil, 0, fmt.Errorf("failed to count entries: %w", err)
	}

	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE kouden_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	offset := (page - 1) * perPage
	rows, err := r.querier.Query(ctx, query, koudenID, perPage, offset)
	if err != nil {
		r.logger.Error("Failed to list entries page", "kouden_id", koudenID.String(), "error", err)
		return nil, 0, fmt.Errorf("failed to list entries page: %w", err)
	}
	defer rows.Close()

	var entries []*entry.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read entries: %w", err)
	}

	return entries, total, nil
}

// ListNamePairs retrieves the {id, name} projection used by duplicate detection
func (r *EntryRepository) ListNamePairs(ctx context.Context, koudenID uuid.UUID) ([]entry.NamePair, error) {
	query := `
		SELECT id, name
		FROM entries
		WHERE kouden_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.querier.Query(ctx, query, koudenID)
	if err != nil {
		r.logger.Error("Failed to list name pairs", "kouden_id", koudenID.String(), "error", err)
		return nil, fmt.Errorf("failed to list name pairs: %w", err)
	}
	defer rows.Close()

	var pairs []entry.NamePair
	for rows.Next() {
		var p entry.NamePair
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan name pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read name pairs: %w", err)
	}

	return pairs, nil
}

// Update updates an existing entry using optimistic locking.
// Returns ErrConcurrentModification if the entry was modified between read and update.
func (r *EntryRepository) Update(ctx context.Context, e *entry.Entry) error {
	query := `
		UPDATE entries
		SET name = $1, organization = $2, amount = $3, attendance = $4, return_status = $5, version = $6, updated_at = $7
		WHERE id = $8 AND version = $9 AND deleted_at IS NULL
	`

	result, err := r.querier.Exec(ctx, query,
		e.Name,
		e.Organization,
		e.Amount,
		e.Attendance,
		e.ReturnStatus,
		e.Version,
		e.UpdatedAt,
		e.ID,
		e.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update entry", "id", e.ID.String(), "error", err)
		return fmt.Errorf("failed to update entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return entry.ErrConcurrentModification{EntryID: e.ID}
	}

	return nil
}

// SoftDelete marks an entry deleted, excluding it from all future calculations
func (r *EntryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE entries
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to soft-delete entry", "id", id.String(), "error", err)
		return fmt.Errorf("failed to soft-delete entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return entry.ErrEntryNotFound{EntryID: id}
	}

	return nil
}

// ResetDuplicateFlags clears is_duplicate for every entry in a record-book.
// Always run before SetDuplicateFlags so renamed entries lose stale flags.
func (r *EntryRepository) ResetDuplicateFlags(ctx context.Context, koudenID uuid.UUID) error {
	query := `
		UPDATE entries
		SET is_duplicate = FALSE
		WHERE kouden_id = $1
	`

	if _, err := r.querier.Exec(ctx, query, koudenID); err != nil {
		r.logger.Error("Failed to reset duplicate flags", "kouden_id", koudenID.String(), "error", err)
		return fmt.Errorf("failed to reset duplicate flags: %w", err)
	}

	return nil
}

// SetDuplicateFlags marks the listed entries as duplicates
func (r *EntryRepository) SetDuplicateFlags(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE entries
		SET is_duplicate = TRUE
		WHERE id = ANY($1)
	`

	if _, err := r.querier.Exec(ctx, query, ids); err != nil {
		r.logger.Error("Failed to set duplicate flags", "count", len(ids), "error", err)
		return fmt.Errorf("failed to set duplicate flags: %w", err)
	}

	return nil
}
