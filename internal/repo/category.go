package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/stashport/internal/domain"
)

// CategoryRepo defines the write operations for the categories and items of
// a guide itinerary. Reads go through ItineraryRepo's assembled query.
type CategoryRepo interface {
	// DeleteByItinerary removes every category of an itinerary; items go with
	// them through ON DELETE CASCADE.
	DeleteByItinerary(ctx context.Context, itineraryID uuid.UUID) error

	// InsertAll writes categories and their items in one batch.
	// IDs must be set by the caller.
	InsertAll(ctx context.Context, categories []domain.Category) error
}

// pgCategoryRepo is the Postgres implementation of CategoryRepo.
type pgCategoryRepo struct {
	db db
}

// NewCategoryRepo constructs a CategoryRepo backed by the provided db connection.
func NewCategoryRepo(db db) CategoryRepo {
	return &pgCategoryRepo{db: db}
}

func (r *pgCategoryRepo) DeleteByItinerary(ctx context.Context, itineraryID uuid.UUID) error {
	const q = `DELETE FROM categories WHERE itinerary_id = @itinerary_id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"itinerary_id": itineraryID}); err != nil {
		return fmt.Errorf("repo.CategoryRepo.DeleteByItinerary: %w", err)
	}
	return nil
}

func (r *pgCategoryRepo) InsertAll(ctx context.Context, categories []domain.Category) error {
	const insertCategory = `
		INSERT INTO categories (id, itinerary_id, name, icon, sort_order)
		VALUES (@id, @itinerary_id, @name, @icon, @sort_order)`

	const insertItem = `
		INSERT INTO category_items (id, category_id, title, location, notes, sort_order)
		VALUES (@id, @category_id, @title, @location, @notes, @sort_order)`

	b := &pgx.Batch{}
	for _, c := range categories {
		b.Queue(insertCategory, pgx.NamedArgs{
			"id":           c.ID,
			"itinerary_id": c.ItineraryID,
			"name":         c.Name,
			"icon":         c.Icon,
			"sort_order":   c.SortOrder,
		})
		for _, item := range c.Items {
			b.Queue(insertItem, pgx.NamedArgs{
				"id":          item.ID,
				"category_id": c.ID,
				"title":       item.Title,
				"location":    nullIfEmpty(item.Location),
				"notes":       nullIfEmpty(item.Notes),
				"sort_order":  item.SortOrder,
			})
		}
	}

	if err := sendBatch(ctx, r.db, b); err != nil {
		return fmt.Errorf("repo.CategoryRepo.InsertAll: %w", err)
	}
	return nil
}
