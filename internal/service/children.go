package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/stashport/internal/domain"
)

// buildDays turns a validated days payload into rows. Ids are assigned here
// so each activity points at its day by id. A missing day number defaults
// to the 1-based position.
func buildDays(itineraryID uuid.UUID, in []domain.DayInput) []domain.Day {
	days := make([]domain.Day, len(in))
	for i, d := range in {
		day := domain.Day{
			ID:          uuid.New(),
			ItineraryID: itineraryID,
			DayNumber:   i + 1,
			Title:       d.Title,
			Activities:  make([]domain.Activity, len(d.Activities)),
		}
		if d.DayNumber != nil {
			day.DayNumber = *d.DayNumber
		}
		// Already checked by the datetime validator.
		if t, err := time.Parse(time.DateOnly, d.Date); err == nil {
			day.Date = &t
		}
		for j, a := range d.Activities {
			day.Activities[j] = domain.Activity{
				ID:        uuid.New(),
				DayID:     day.ID,
				Title:     a.Title,
				Location:  a.Location,
				StartTime: a.StartTime,
				EndTime:   a.EndTime,
				Notes:     a.Notes,
			}
		}
		days[i] = day
	}
	return days
}

// buildCategories is buildDays for guides. Sort orders default to the
// position in the payload and a blank icon becomes the pin glyph.
func buildCategories(itineraryID uuid.UUID, in []domain.CategoryInput) []domain.Category {
	cats := make([]domain.Category, len(in))
	for i, c := range in {
		cat := domain.Category{
			ID:          uuid.New(),
			ItineraryID: itineraryID,
			Name:        c.Name,
			Icon:        c.Icon,
			SortOrder:   orDefault(c.SortOrder, i),
			Items:       make([]domain.CategoryItem, len(c.Items)),
		}
		if cat.Icon == "" {
			cat.Icon = domain.DefaultCategoryIcon
		}
		for j, item := range c.Items {
			cat.Items[j] = domain.CategoryItem{
				ID:         uuid.New(),
				CategoryID: cat.ID,
				Title:      item.Title,
				Location:   item.Location,
				Notes:      item.Notes,
				SortOrder:  orDefault(item.SortOrder, j),
			}
		}
		cats[i] = cat
	}
	return cats
}

func orDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
