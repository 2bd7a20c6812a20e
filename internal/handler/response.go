package handler

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/stashport/internal/domain"
)

// JSON shapes of the API. Field names are camelCase; optional text fields are
// omitted when empty.

type activityResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Location  string    `json:"location,omitempty"`
	StartTime string    `json:"startTime,omitempty"`
	EndTime   string    `json:"endTime,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

type dayResponse struct {
	ID         uuid.UUID           `json:"id"`
	DayNumber  int                 `json:"dayNumber"`
	Date       *openapi_types.Date `json:"date,omitempty"`
	Title      string              `json:"title,omitempty"`
	Activities []activityResponse  `json:"activities"`
}

type categoryItemResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Location  string    `json:"location,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	SortOrder int       `json:"sortOrder"`
}

type categoryResponse struct {
	ID        uuid.UUID              `json:"id"`
	Name      string                 `json:"name"`
	Icon      string                 `json:"icon"`
	SortOrder int                    `json:"sortOrder"`
	Items     []categoryItemResponse `json:"items"`
}

type itineraryResponse struct {
	ID            uuid.UUID          `json:"id"`
	UserID        uuid.UUID          `json:"userId"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	Destination   string             `json:"destination,omitempty"`
	Slug          string             `json:"slug"`
	IsPublic      bool               `json:"isPublic"`
	BudgetLevel   *int               `json:"budgetLevel,omitempty"`
	Type          string             `json:"type"`
	CoverPhotoURL string             `json:"coverPhotoUrl,omitempty"`
	StashedFromID *uuid.UUID         `json:"stashedFromId,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
	Days          []dayResponse      `json:"days"`
	Categories    []categoryResponse `json:"categories"`
	Tags          []string           `json:"tags"`
}

// saveResponse is returned by create and update. Warnings lists secondary
// writes that failed, and is omitted when everything was saved.
type saveResponse struct {
	itineraryResponse
	Warnings []string `json:"warnings,omitempty"`
}

type ownerResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"displayName"`
	AvatarColor string    `json:"avatarColor"`
}

type summaryResponse struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description,omitempty"`
	Destination   string        `json:"destination,omitempty"`
	Slug          string        `json:"slug"`
	Type          string        `json:"type"`
	BudgetLevel   *int          `json:"budgetLevel,omitempty"`
	CoverPhotoURL string        `json:"coverPhotoUrl,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	Owner         ownerResponse `json:"owner"`
	DayCount      int           `json:"dayCount"`
	CategoryCount int           `json:"categoryCount"`
	Tags          []string      `json:"tags"`
}

type paginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

type exploreResponse struct {
	Itineraries []summaryResponse  `json:"itineraries"`
	Pagination  paginationResponse `json:"pagination"`
}

// --- mapping helpers --------------------------------------------------------

func itineraryToResponse(it domain.Itinerary) itineraryResponse {
	resp := itineraryResponse{
		ID:            it.ID,
		UserID:        it.UserID,
		Title:         it.Title,
		Description:   it.Description,
		Destination:   it.Destination,
		Slug:          it.Slug,
		IsPublic:      it.IsPublic,
		BudgetLevel:   it.BudgetLevel,
		Type:          string(it.Type),
		CoverPhotoURL: it.CoverPhotoURL,
		StashedFromID: it.StashedFromID,
		CreatedAt:     it.CreatedAt,
		UpdatedAt:     it.UpdatedAt,
		Days:          make([]dayResponse, len(it.Days)),
		Categories:    make([]categoryResponse, len(it.Categories)),
		Tags:          it.Tags,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}

	for i, d := range it.Days {
		day := dayResponse{
			ID:         d.ID,
			DayNumber:  d.DayNumber,
			Title:      d.Title,
			Activities: make([]activityResponse, len(d.Activities)),
		}
		if d.Date != nil {
			day.Date = &openapi_types.Date{Time: *d.Date}
		}
		for j, a := range d.Activities {
			day.Activities[j] = activityResponse{
				ID:        a.ID,
				Title:     a.Title,
				Location:  a.Location,
				StartTime: a.StartTime,
				EndTime:   a.EndTime,
				Notes:     a.Notes,
			}
		}
		resp.Days[i] = day
	}

	for i, c := range it.Categories {
		cat := categoryResponse{
			ID:        c.ID,
			Name:      c.Name,
			Icon:      c.Icon,
			SortOrder: c.SortOrder,
			Items:     make([]categoryItemResponse, len(c.Items)),
		}
		for j, item := range c.Items {
			cat.Items[j] = categoryItemResponse{
				ID:        item.ID,
				Title:     item.Title,
				Location:  item.Location,
				Notes:     item.Notes,
				SortOrder: item.SortOrder,
			}
		}
		resp.Categories[i] = cat
	}
	return resp
}

func saveToResponse(res domain.SaveResult) saveResponse {
	return saveResponse{itineraryResponse: itineraryToResponse(res.Itinerary), Warnings: res.Warnings}
}

func exploreToResponse(page domain.ExplorePage) exploreResponse {
	items := make([]summaryResponse, len(page.Items))
	for i, s := range page.Items {
		tags := s.Tags
		if tags == nil {
			tags = []string{}
		}
		items[i] = summaryResponse{
			ID:            s.ID,
			Title:         s.Title,
			Description:   s.Description,
			Destination:   s.Destination,
			Slug:          s.Slug,
			Type:          string(s.Type),
			BudgetLevel:   s.BudgetLevel,
			CoverPhotoURL: s.CoverPhotoURL,
			CreatedAt:     s.CreatedAt,
			Owner: ownerResponse{
				ID:          s.OwnerID,
				DisplayName: s.OwnerDisplayName,
				AvatarColor: s.OwnerAvatarColor,
			},
			DayCount:      s.DayCount,
			CategoryCount: s.CategoryCount,
			Tags:          tags,
		}
	}
	return exploreResponse{
		Itineraries: items,
		Pagination: paginationResponse{
			Page:       page.Page,
			Limit:      page.Limit,
			TotalCount: page.TotalCount,
			TotalPages: page.TotalPages,
			HasMore:    page.HasMore,
		},
	}
}
