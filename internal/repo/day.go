package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/stashport/internal/domain"
)

// DayRepo defines the write operations for the days and activities of a
// daily itinerary. Reads go through ItineraryRepo's assembled query.
type DayRepo interface {
	// DeleteByItinerary removes every day of an itinerary; activities go with
	// them through ON DELETE CASCADE.
	DeleteByItinerary(ctx context.Context, itineraryID uuid.UUID) error

	// InsertAll writes days and their activities in one batch, preserving
	// slice order in the position columns. IDs must be set by the caller.
	InsertAll(ctx context.Context, days []domain.Day) error
}

// pgDayRepo is the Postgres implementation of DayRepo.
type pgDayRepo struct {
	db db
}

// NewDayRepo constructs a DayRepo backed by the provided db connection.
func NewDayRepo(db db) DayRepo {
	return &pgDayRepo{db: db}
}

func (r *pgDayRepo) DeleteByItinerary(ctx context.Context, itineraryID uuid.UUID) error {
	const q = `DELETE FROM days WHERE itinerary_id = @itinerary_id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"itinerary_id": itineraryID}); err != nil {
		return fmt.Errorf("repo.DayRepo.DeleteByItinerary: %w", err)
	}
	return nil
}

// InsertAll queues each day followed by its activities, so every activity's
// parent row exists by the time it is inserted.
func (r *pgDayRepo) InsertAll(ctx context.Context, days []domain.Day) error {
	const insertDay = `
		INSERT INTO days (id, itinerary_id, day_number, position, date, title)
		VALUES (@id, @itinerary_id, @day_number, @position, @date, @title)`

	const insertActivity = `
		INSERT INTO activities (id, day_id, position, title, location, start_time, end_time, notes)
		VALUES (@id, @day_id, @position, @title, @location, @start_time, @end_time, @notes)`

	b := &pgx.Batch{}
	for i, d := range days {
		b.Queue(insertDay, pgx.NamedArgs{
			"id":           d.ID,
			"itinerary_id": d.ItineraryID,
			"day_number":   d.DayNumber,
			"position":     i,
			"date":         d.Date, // nil becomes NULL
			"title":        nullIfEmpty(d.Title),
		})
		for j, a := range d.Activities {
			b.Queue(insertActivity, pgx.NamedArgs{
				"id":         a.ID,
				"day_id":     d.ID,
				"position":   j,
				"title":      a.Title,
				"location":   nullIfEmpty(a.Location),
				"start_time": nullIfEmpty(a.StartTime),
				"end_time":   nullIfEmpty(a.EndTime),
				"notes":      nullIfEmpty(a.Notes),
			})
		}
	}

	if err := sendBatch(ctx, r.db, b); err != nil {
		return fmt.Errorf("repo.DayRepo.InsertAll: %w", err)
	}
	return nil
}
