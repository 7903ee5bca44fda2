package entry

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines entry persistence operations
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)

	// ListActiveByKouden returns all non-deleted entries for a record-book
	ListActiveByKouden(ctx context.Context, koudenID uuid.UUID) ([]*Entry, error)

	// ListByKouden returns a page of non-deleted entries plus the total count
	ListByKouden(ctx context.Context, koudenID uuid.UUID, page, perPage int) ([]*Entry, int64, error)

	// ListNamePairs returns the {id, name} projection for duplicate detection
	ListNamePairs(ctx context.Context, koudenID uuid.UUID) ([]NamePair, error)

	// Update uses optimistic locking; fails with ErrConcurrentModification
	// if the stored version does not match
	Update(ctx context.Context, e *Entry) error

	// SoftDelete marks an entry deleted without removing the row
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// ResetDuplicateFlags clears is_duplicate for every entry in a record-book
	ResetDuplicateFlags(ctx context.Context, koudenID uuid.UUID) error

	// SetDuplicateFlags marks the listed entries as duplicates
	SetDuplicateFlags(ctx context.Context, ids []uuid.UUID) error

	WithTx(tx pgx.Tx) Repository
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	EntryID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for entry: " + e.EntryID.String()
}

// ErrEntryNotFound indicates missing entry
type ErrEntryNotFound struct {
	EntryID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "entry not found: " + e.EntryID.String()
}
