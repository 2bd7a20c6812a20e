// Package domain contains the core data types for the Stashport backend.
// It depends only on google/uuid and is imported by every other internal
// package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ItineraryType selects which child collection of an itinerary is active.
type ItineraryType string

const (
	// TypeDaily itineraries are planned day by day; Days is the active collection.
	TypeDaily ItineraryType = "daily"
	// TypeGuide itineraries are curated lists; Categories is the active collection.
	TypeGuide ItineraryType = "guide"
)

// Itinerary is the top-level aggregate: one trip plan or guide owned by one user.
// Days and Categories can both hold rows in storage; Type decides which one the
// clients render.
type Itinerary struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Title         string
	Description   string
	Destination   string
	Slug          string
	IsPublic      bool
	BudgetLevel   *int // 1-4, nil when unset
	Type          ItineraryType
	CoverPhotoURL string
	StashedFromID *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Days       []Day
	Categories []Category
	Tags       []string
}

// Day is one date-scoped unit of a daily itinerary.
type Day struct {
	ID          uuid.UUID
	ItineraryID uuid.UUID
	DayNumber   int
	Date        *time.Time
	Title       string
	Activities  []Activity
}

// Activity is a timed entry within a Day. StartTime and EndTime are opaque
// strings supplied by the client (e.g. "09:30").
type Activity struct {
	ID        uuid.UUID
	DayID     uuid.UUID
	Title     string
	Location  string
	StartTime string
	EndTime   string
	Notes     string
}

// Category is an un-dated grouping ("section") of a guide itinerary.
type Category struct {
	ID          uuid.UUID
	ItineraryID uuid.UUID
	Name        string
	Icon        string
	SortOrder   int
	Items       []CategoryItem
}

// CategoryItem is a single place within a Category.
type CategoryItem struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
	Title      string
	Location   string
	Notes      string
	SortOrder  int
}

// SaveResult is returned by create and update. Warnings lists secondary writes
// (profile, tags) that failed without failing the save itself.
type SaveResult struct {
	Itinerary Itinerary
	Warnings  []string
}

// CanView reports whether viewer may read it. Public itineraries are visible to
// everyone, private ones only to their owner. A nil viewer is anonymous.
func (it Itinerary) CanView(viewer *Identity) bool {
	if it.IsPublic {
		return true
	}
	return viewer != nil && viewer.UserID == it.UserID
}
