package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/stashport/internal/domain"
)

// itineraryReader is the read side of ItineraryService that exports and
// share images need.
type itineraryReader interface {
	Get(ctx context.Context, viewer *domain.Identity, id uuid.UUID) (domain.Itinerary, error)
}

// ExportService flattens a single itinerary for download.
type ExportService struct {
	itineraries itineraryReader
}

// NewExportService constructs an ExportService reading through itineraries,
// so exports follow the same visibility rules as a normal read.
func NewExportService(itineraries itineraryReader) *ExportService {
	return &ExportService{itineraries: itineraries}
}

// Export returns the assembled itinerary and one ExportRow per activity
// (daily) or category item (guide). A day or category without children
// contributes one row with empty entry fields.
func (s *ExportService) Export(ctx context.Context, viewer *domain.Identity, id uuid.UUID) (domain.Export, error) {
	it, err := s.itineraries.Get(ctx, viewer, id)
	if err != nil {
		return domain.Export{}, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	return domain.Export{Itinerary: it, Rows: exportRows(it)}, nil
}

func exportRows(it domain.Itinerary) []domain.ExportRow {
	base := domain.ExportRow{
		ItineraryID: it.ID.String(),
		Title:       it.Title,
		Destination: it.Destination,
		Type:        string(it.Type),
	}

	rows := []domain.ExportRow{}
	if it.Type == domain.TypeGuide {
		for _, c := range it.Categories {
			group := base
			group.GroupNumber = c.SortOrder
			group.GroupTitle = c.Name
			if len(c.Items) == 0 {
				rows = append(rows, group)
				continue
			}
			for _, item := range c.Items {
				row := group
				row.EntryTitle = item.Title
				row.Location = item.Location
				row.Notes = item.Notes
				rows = append(rows, row)
			}
		}
		return rows
	}

	for _, d := range it.Days {
		group := base
		group.GroupNumber = d.DayNumber
		group.GroupTitle = d.Title
		if d.Date != nil {
			group.GroupDate = d.Date.Format(time.DateOnly)
		}
		if len(d.Activities) == 0 {
			rows = append(rows, group)
			continue
		}
		for _, a := range d.Activities {
			row := group
			row.EntryTitle = a.Title
			row.Location = a.Location
			row.StartTime = a.StartTime
			row.EndTime = a.EndTime
			row.Notes = a.Notes
			rows = append(rows, row)
		}
	}
	return rows
}
