package domain_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/stashport/internal/domain"
)

func ptr[T any](v T) *T { return &v }

// ---- pagination ------------------------------------------------------------

func TestNewPaginationParams(t *testing.T) {
	tests := []struct {
		name        string
		page, limit *int
		want        domain.PaginationParams
	}{
		{"defaults", nil, nil, domain.PaginationParams{Page: 1, Limit: 12}},
		{"explicit", ptr(3), ptr(20), domain.PaginationParams{Page: 3, Limit: 20}},
		{"limit capped", nil, ptr(500), domain.PaginationParams{Page: 1, Limit: 50}},
		{"zero page", ptr(0), nil, domain.PaginationParams{Page: 1, Limit: 12}},
		{"negative limit", nil, ptr(-5), domain.PaginationParams{Page: 1, Limit: 12}},
		{"huge page clamped", ptr(math.MaxInt), ptr(50), domain.PaginationParams{Page: domain.MaxExplorePage, Limit: 50}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.NewPaginationParams(tc.page, tc.limit))
		})
	}
}

func TestPaginationParams_Offset(t *testing.T) {
	assert.Equal(t, 0, domain.PaginationParams{Page: 1, Limit: 12}.Offset())
	assert.Equal(t, 24, domain.PaginationParams{Page: 3, Limit: 12}.Offset())
}

func TestPaginationParams_HugePageDoesNotWrap(t *testing.T) {
	p := domain.NewPaginationParams(ptr(400_000_000_000_000_000), ptr(50))

	assert.Positive(t, p.Offset())
	assert.LessOrEqual(t, p.Offset(), math.MaxInt-50)

	page := domain.NewExplorePage(nil, p, 10)
	assert.False(t, page.HasMore)
	assert.Equal(t, 1, page.TotalPages)
}

func TestNewExplorePage(t *testing.T) {
	p := domain.PaginationParams{Page: 2, Limit: 5}

	page := domain.NewExplorePage(nil, p, 11)

	assert.NotNil(t, page.Items)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasMore)
	assert.EqualValues(t, 11, page.TotalCount)

	last := domain.NewExplorePage(nil, domain.PaginationParams{Page: 3, Limit: 5}, 11)
	assert.False(t, last.HasMore)

	empty := domain.NewExplorePage(nil, domain.PaginationParams{Page: 1, Limit: 12}, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasMore)
}

func TestParseTagFilter(t *testing.T) {
	assert.Equal(t, []string{"food", "beach"}, domain.ParseTagFilter(" Food, ,beach,FOOD"))
	assert.Empty(t, domain.ParseTagFilter(""))
}

// ---- input -----------------------------------------------------------------

func TestItineraryInput_Normalized(t *testing.T) {
	in := domain.ItineraryInput{
		Title:       "  Tokyo Week ",
		Destination: " Tokyo",
		Type:        " Guide ",
		Tags:        []string{"Food", " food", "", "BEACH"},
		Categories: []domain.CategoryInput{{
			Name: " Cafes ",
			Items: []domain.CategoryItemInput{
				{Title: " Glitch "},
				{Title: "   "},
			},
		}},
	}

	out := in.Normalized()

	assert.Equal(t, "Tokyo Week", out.Title)
	assert.Equal(t, "Tokyo", out.Destination)
	assert.Equal(t, domain.TypeGuide, out.Type)
	assert.Equal(t, []string{"food", "beach"}, out.Tags)
	assert.Nil(t, out.Days, "absent days stay absent")
	require.Len(t, out.Categories, 1)
	assert.Equal(t, "Cafes", out.Categories[0].Name)
	require.Len(t, out.Categories[0].Items, 1, "blank items are dropped")
	assert.Equal(t, "Glitch", out.Categories[0].Items[0].Title)

	assert.Equal(t, " Cafes ", in.Categories[0].Name, "the receiver is not modified")
}

func TestItineraryInput_NormalizedKeepsEmptyDays(t *testing.T) {
	out := domain.ItineraryInput{Days: []domain.DayInput{}}.Normalized()

	assert.NotNil(t, out.Days)
	assert.Empty(t, out.Days)
	assert.NotNil(t, out.Tags)
}

func TestItineraryInput_Public(t *testing.T) {
	assert.True(t, domain.ItineraryInput{}.Public())
	assert.True(t, domain.ItineraryInput{IsPublic: ptr(true)}.Public())
	assert.False(t, domain.ItineraryInput{IsPublic: ptr(false)}.Public())
}

func TestItineraryInput_ResolvedType(t *testing.T) {
	assert.Equal(t, domain.TypeDaily, domain.ItineraryInput{}.ResolvedType())
	assert.Equal(t, domain.TypeGuide, domain.ItineraryInput{Type: domain.TypeGuide}.ResolvedType())
}

// ---- visibility ------------------------------------------------------------

func TestItinerary_CanView(t *testing.T) {
	owner := uuid.New()
	private := domain.Itinerary{UserID: owner, IsPublic: false}
	public := domain.Itinerary{UserID: owner, IsPublic: true}

	assert.True(t, public.CanView(nil))
	assert.True(t, public.CanView(&domain.Identity{UserID: uuid.New()}))
	assert.False(t, private.CanView(nil))
	assert.False(t, private.CanView(&domain.Identity{UserID: uuid.New()}))
	assert.True(t, private.CanView(&domain.Identity{UserID: owner}))
}

// ---- share -----------------------------------------------------------------

func TestShareFormat_Size(t *testing.T) {
	tests := []struct {
		format domain.ShareFormat
		w, h   int
	}{
		{domain.FormatStory, 1080, 1920},
		{domain.FormatSquare, 1080, 1080},
		{domain.FormatLandscape, 1200, 630},
		{"", 1080, 1920},
	}
	for _, tc := range tests {
		w, h := tc.format.Size()
		assert.Equal(t, tc.w, w, tc.format)
		assert.Equal(t, tc.h, h, tc.format)
	}
}

func TestShareRequest_WithDefaults(t *testing.T) {
	got := domain.ShareRequest{}.WithDefaults()
	assert.Equal(t, domain.StyleClassic, got.Style)
	assert.Equal(t, domain.FormatStory, got.Format)

	kept := domain.ShareRequest{Style: domain.StyleSunset, Format: domain.FormatSquare}.WithDefaults()
	assert.Equal(t, domain.StyleSunset, kept.Style)
	assert.Equal(t, domain.FormatSquare, kept.Format)
}

// ---- errors and tags -------------------------------------------------------

func TestValidationError_UnwrapsToErrValidation(t *testing.T) {
	err := fmt.Errorf("service: %w", domain.NewValidationError("title is required"))

	assert.True(t, errors.Is(err, domain.ErrValidation))
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "title is required", verr.Message)
}

func TestIsTripTag(t *testing.T) {
	assert.True(t, domain.IsTripTag("road-trip"))
	assert.False(t, domain.IsTripTag("Road-Trip"))
	assert.False(t, domain.IsTripTag("ramen"))
}
