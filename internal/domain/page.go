package domain

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Explore paging defaults.
const (
	DefaultExploreLimit = 12
	MaxExploreLimit     = 50

	// MaxExplorePage keeps Page*Limit inside an int.
	MaxExplorePage = math.MaxInt / MaxExploreLimit
)

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed. Limit is capped at MaxExploreLimit by NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil or out-of-range pointers fall back to page=1, limit=12; limit is capped
// at 50 and page at MaxExplorePage.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultExploreLimit}
	if page != nil && *page >= 1 {
		p.Page = min(*page, MaxExplorePage)
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, MaxExploreLimit)
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ExploreSort names the explore ordering. Both values currently order by
// creation time, newest first.
type ExploreSort string

const (
	SortRecent  ExploreSort = "recent"
	SortPopular ExploreSort = "popular"
)

// ExploreQuery is the filter set of the public listing.
type ExploreQuery struct {
	PaginationParams
	Destination string
	Tags        []string      // lowercase; empty means no tag filter
	Type        ItineraryType // empty means all
	Sort        ExploreSort
	ExcludeUser *uuid.UUID // the viewer's own itineraries are hidden
}

// ParseTagFilter splits a comma-separated tag list, lowercasing and dropping
// blanks and duplicates.
func ParseTagFilter(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		t := strings.ToLower(strings.TrimSpace(part))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Summary is the lightweight explore row.
type Summary struct {
	ID               uuid.UUID
	Title            string
	Description      string
	Destination      string
	Slug             string
	Type             ItineraryType
	BudgetLevel      *int
	CoverPhotoURL    string
	CreatedAt        time.Time
	OwnerID          uuid.UUID
	OwnerDisplayName string
	OwnerAvatarColor string
	DayCount         int
	CategoryCount    int
	Tags             []string
}

// ExplorePage is one page of summaries plus pagination metadata.
type ExplorePage struct {
	Items      []Summary
	Page       int
	Limit      int
	TotalCount int64
	TotalPages int
	HasMore    bool
}

// NewExplorePage computes the pagination metadata for items fetched with p out of total rows.
func NewExplorePage(items []Summary, p PaginationParams, total int64) ExplorePage {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	if items == nil {
		items = []Summary{}
	}
	return ExplorePage{
		Items:      items,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalCount: total,
		TotalPages: pages,
		HasMore:    int64(p.Page*p.Limit) < total,
	}
}
