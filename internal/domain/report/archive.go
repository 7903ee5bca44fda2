package report

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Archived is a summary snapshot persisted for history and export
type Archived struct {
	ID         uuid.UUID `json:"id" bson:"_id"`
	KoudenID   uuid.UUID `json:"kouden_id" bson:"kouden_id"`
	ArchivedAt time.Time `json:"archived_at" bson:"archived_at"`
	Summary    Summary   `json:"summary" bson:"summary"`
}

// NewArchived wraps a computed summary into a snapshot document
func NewArchived(s *Summary) *Archived {
	return &Archived{
		ID:         uuid.New(),
		KoudenID:   s.KoudenID,
		ArchivedAt: time.Now(),
		Summary:    *s,
	}
}

// ArchiveRepository defines persistence for summary snapshots
type ArchiveRepository interface {
	Create(ctx context.Context, a *Archived) error

	// ListByKouden returns a page of snapshots newest first, plus total count
	ListByKouden(ctx context.Context, koudenID uuid.UUID, page, perPage int) ([]*Archived, int64, error)
}
