// Package offering covers supplementary contributions attributed to a
// specific kouden entry. The summary calculation only ever consumes the
// aggregated per-entry total, never the raw allocation rows.
package offering

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNegativeAmount = errors.New("allocation amount must not be negative")

// Allocation attributes part of an offering's value to one entry
type Allocation struct {
	ID          uuid.UUID `json:"id"`
	EntryID     uuid.UUID `json:"entry_id"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"` // Whole yen
	CreatedAt   time.Time `json:"created_at"`
}

// NewAllocation creates an allocation against an existing entry
func NewAllocation(entryID uuid.UUID, description string, amount int64) (*Allocation, error) {
	if amount < 0 {
		return nil, ErrNegativeAmount
	}
	return &Allocation{
		ID:          uuid.New(),
		EntryID:     entryID,
		Description: description,
		Amount:      amount,
		CreatedAt:   time.Now(),
	}, nil
}

// Repository defines offering allocation persistence operations
type Repository interface {
	Create(ctx context.Context, a *Allocation) error

	// TotalForEntry returns the aggregate allocation amount for one entry.
	// An entry without allocations yields 0, not an error.
	TotalForEntry(ctx context.Context, entryID uuid.UUID) (int64, error)
}
