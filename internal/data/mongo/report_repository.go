// Package mongo provides the MongoDB implementation of the report archive.
// Archived summaries are immutable snapshots, so the repository only inserts
// and reads.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kouden-gift-ledger/internal/domain/report"
)

const (
	// ReportCollectionName is the name of the archived report collection in MongoDB
	ReportCollectionName = "archived_reports"
)

// ReportRepository implements the report.ArchiveRepository interface for MongoDB
type ReportRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewReportRepository creates a new MongoDB report repository
func NewReportRepository(logger *slog.Logger, db *mongo.Database) report.ArchiveRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores an archived summary snapshot
func (r *ReportRepository) Create(ctx context.Context, archived *report.Archived) error {
	collection := r.db.Collection(ReportCollectionName)

	_, err := collection.InsertOne(ctx, archived)
	if err != nil {
		r.logger.Error("Failed to archive report",
			"kouden_id", archived.KoudenID.String(),
			"error", err)
		return fmt.Errorf("failed to archive report: %w", err)
	}

	return nil
}

// ListByKouden retrieves paginated archived reports for a record-book.
// Results are sorted by archive time in descending order (newest first).
func (r *ReportRepository) ListByKouden(ctx context.Context, koudenID uuid.UUID, page, perPage int) ([]*report.Archived, int64, error) {
	collection := r.db.Collection(ReportCollectionName)

	filter := bson.M{"kouden_id": koudenID}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count archived reports",
			"kouden_id", koudenID.String(),
			"error", err)
		return nil, 0, fmt.Errorf("failed to count archived reports: %w", err)
	}

	opts := options.Find().
		SetSort(bson.M{"archived_at": -1}). // Sort by archived_at in descending order
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list archived reports",
			"kouden_id", koudenID.String(),
			"error", err)
		return nil, 0, fmt.Errorf("failed to list archived reports: %w", err)
	}
	defer cursor.Close(ctx)

	var archived []*report.Archived
	if err := cursor.All(ctx, &archived); err != nil {
		r.logger.Error("Failed to decode archived reports",
			"kouden_id", koudenID.String(),
			"error", err)
		return nil, 0, fmt.Errorf("failed to decode archived reports: %w", err)
	}

	return archived, total, nil
}
