package domain

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// DefaultCategoryIcon is used when a category is saved without an icon.
const DefaultCategoryIcon = "📍"

// ItineraryInput is the write payload for create and update. The struct tags
// are read by the validate package; the whole tree, children included, is
// validated before any write begins.
//
// Days and Categories are nil when the key was absent from the request, and
// non-nil (possibly empty) when it was present. Update uses the difference.
type ItineraryInput struct {
	Title         string          `json:"title" validate:"required,max=200"`
	Description   string          `json:"description" validate:"max=2000"`
	Destination   string          `json:"destination" validate:"max=100"`
	IsPublic      *bool           `json:"isPublic"`
	BudgetLevel   *int            `json:"budgetLevel" validate:"omitnil,min=1,max=4"`
	Type          ItineraryType   `json:"type" validate:"omitempty,oneof=daily guide"`
	CoverPhotoURL string          `json:"coverPhotoUrl" validate:"omitempty,max=2048,uri"`
	StashedFromID *uuid.UUID      `json:"stashedFromId"`
	Tags          []string        `json:"tags" validate:"max=3,dive,triptag"`
	Days          []DayInput      `json:"days" validate:"dive"`
	Categories    []CategoryInput `json:"categories" validate:"dive"`
}

// DayInput is one day of a daily itinerary payload.
type DayInput struct {
	DayNumber  *int            `json:"dayNumber" validate:"omitnil,min=1"`
	Date       string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Title      string          `json:"title" validate:"max=200"`
	Activities []ActivityInput `json:"activities" validate:"dive"`
}

// ActivityInput is one activity of a day payload.
type ActivityInput struct {
	Title     string `json:"title" validate:"required,max=200"`
	Location  string `json:"location" validate:"max=200"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Notes     string `json:"notes" validate:"max=1000"`
}

// CategoryInput is one section of a guide payload.
type CategoryInput struct {
	Name      string              `json:"name" validate:"required,max=100"`
	Icon      string              `json:"icon"`
	SortOrder *int                `json:"sortOrder"`
	Items     []CategoryItemInput `json:"items" validate:"dive"`
}

// CategoryItemInput is one place within a section payload.
type CategoryItemInput struct {
	Title     string `json:"title" validate:"required,max=200"`
	Location  string `json:"location" validate:"max=200"`
	Notes     string `json:"notes" validate:"max=1000"`
	SortOrder *int   `json:"sortOrder"`
}

// Normalized returns a copy with strings trimmed, tags lowercased and
// deduplicated, and blank-titled category items dropped. Nil-ness of Days and
// Categories is preserved.
func (in ItineraryInput) Normalized() ItineraryInput {
	out := in
	out.Title = strings.TrimSpace(in.Title)
	out.Description = strings.TrimSpace(in.Description)
	out.Destination = strings.TrimSpace(in.Destination)
	out.CoverPhotoURL = strings.TrimSpace(in.CoverPhotoURL)
	out.Type = ItineraryType(strings.ToLower(strings.TrimSpace(string(in.Type))))

	out.Tags = []string{}
	for _, t := range in.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && !slices.Contains(out.Tags, t) {
			out.Tags = append(out.Tags, t)
		}
	}

	if in.Days != nil {
		out.Days = make([]DayInput, len(in.Days))
		for i, d := range in.Days {
			d.Date = strings.TrimSpace(d.Date)
			d.Title = strings.TrimSpace(d.Title)
			acts := make([]ActivityInput, len(d.Activities))
			for j, a := range d.Activities {
				acts[j] = ActivityInput{
					Title:     strings.TrimSpace(a.Title),
					Location:  strings.TrimSpace(a.Location),
					StartTime: strings.TrimSpace(a.StartTime),
					EndTime:   strings.TrimSpace(a.EndTime),
					Notes:     strings.TrimSpace(a.Notes),
				}
			}
			d.Activities = acts
			out.Days[i] = d
		}
	}

	if in.Categories != nil {
		out.Categories = make([]CategoryInput, len(in.Categories))
		for i, c := range in.Categories {
			c.Name = strings.TrimSpace(c.Name)
			c.Icon = strings.TrimSpace(c.Icon)
			var items []CategoryItemInput
			for _, it := range c.Items {
				it.Title = strings.TrimSpace(it.Title)
				if it.Title == "" {
					continue
				}
				it.Location = strings.TrimSpace(it.Location)
				it.Notes = strings.TrimSpace(it.Notes)
				items = append(items, it)
			}
			c.Items = items
			out.Categories[i] = c
		}
	}
	return out
}

// Public returns the visibility flag, defaulting to true.
func (in ItineraryInput) Public() bool {
	return in.IsPublic == nil || *in.IsPublic
}

// ResolvedType returns the requested type, defaulting to daily.
func (in ItineraryInput) ResolvedType() ItineraryType {
	if in.Type == "" {
		return TypeDaily
	}
	return in.Type
}
