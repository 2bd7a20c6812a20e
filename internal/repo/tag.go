package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TagRepo defines the persistence operations for the trip_tags table.
type TagRepo interface {
	// Replace deletes every tag of an itinerary and inserts tags in its place.
	Replace(ctx context.Context, itineraryID uuid.UUID, tags []string) error
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

// Replace runs the delete and the inserts as one batch. Duplicate tags in the
// input collapse through ON CONFLICT DO NOTHING.
func (r *pgTagRepo) Replace(ctx context.Context, itineraryID uuid.UUID, tags []string) error {
	b := &pgx.Batch{}
	b.Queue(`DELETE FROM trip_tags WHERE itinerary_id = @itinerary_id`,
		pgx.NamedArgs{"itinerary_id": itineraryID})
	for _, tag := range tags {
		b.Queue(`
			INSERT INTO trip_tags (itinerary_id, tag)
			VALUES (@itinerary_id, @tag)
			ON CONFLICT (itinerary_id, tag) DO NOTHING`,
			pgx.NamedArgs{"itinerary_id": itineraryID, "tag": tag})
	}

	if err := sendBatch(ctx, r.db, b); err != nil {
		return fmt.Errorf("repo.TagRepo.Replace: %w", err)
	}
	return nil
}
