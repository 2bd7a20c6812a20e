package handler_test

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/stashport/internal/domain"
	"github.com/pkordes/stashport/internal/handler"
)

func exportFixture() domain.Export {
	it := itineraryFixture()
	it.Days[0].Activities[0].Notes = "Ask for a **high floor** <script>alert(1)</script>"
	return domain.Export{
		Itinerary: it,
		Rows: []domain.ExportRow{{
			ItineraryID: it.ID.String(),
			Title:       it.Title,
			Destination: it.Destination,
			Type:        string(it.Type),
			GroupNumber: 1,
			GroupDate:   "2025-04-01",
			GroupTitle:  "Arrival",
			EntryTitle:  "Check in, then ramen",
			Location:    "Shinjuku",
			StartTime:   "15:00",
		}},
	}
}

func exportHandler(export domain.Export, err error) http.Handler {
	svc := &mockExportServicer{
		export: func(context.Context, *domain.Identity, uuid.UUID) (domain.Export, error) {
			return export, err
		},
	}
	return newHTTPHandler(handler.Services{Export: svc})
}

func exportURL(id uuid.UUID, format string) string {
	url := "/itineraries/" + id.String() + "/export"
	if format != "" {
		url += "?format=" + format
	}
	return url
}

func TestExportItinerary_DefaultsToJSON(t *testing.T) {
	fixture := exportFixture()

	rec := do(exportHandler(fixture, nil), httptest.NewRequest(http.MethodGet, exportURL(fixture.Itinerary.ID, ""), nil), uuid.Nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="tokyo-week.json"`, rec.Header().Get("Content-Disposition"))
	resp := decode[map[string]any](t, rec)
	assert.Equal(t, "Tokyo Week", resp["title"])
}

func TestExportItinerary_CSV(t *testing.T) {
	fixture := exportFixture()

	rec := do(exportHandler(fixture, nil), httptest.NewRequest(http.MethodGet, exportURL(fixture.Itinerary.ID, "csv"), nil), uuid.Nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="tokyo-week.csv"`, rec.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "itinerary_id", records[0][0])
	assert.Equal(t, "notes", records[0][len(records[0])-1])
	assert.Equal(t, fixture.Itinerary.ID.String(), records[1][0])
	assert.Equal(t, "1", records[1][4])
	assert.Equal(t, "Check in, then ramen", records[1][7], "commas must survive quoting")
}

func TestExportItinerary_HTMLRendersMarkdownSafely(t *testing.T) {
	fixture := exportFixture()

	rec := do(exportHandler(fixture, nil), httptest.NewRequest(http.MethodGet, exportURL(fixture.Itinerary.ID, "html"), nil), uuid.Nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Tokyo Week</h1>")
	assert.Contains(t, body, "<strong>temples</strong>")
	assert.Contains(t, body, "<strong>high floor</strong>")
	assert.Contains(t, body, "Day 1: Arrival")
	assert.Contains(t, body, "Tue 1 Apr 2025")
	assert.NotContains(t, body, "<script>")
}

func TestExportItinerary_HTMLGuide(t *testing.T) {
	fixture := exportFixture()
	fixture.Itinerary.Type = domain.TypeGuide
	fixture.Itinerary.Categories = []domain.Category{{
		ID: uuid.New(), Name: "Cafes", Icon: "☕",
		Items: []domain.CategoryItem{{ID: uuid.New(), Title: "Glitch Coffee", Location: "Jimbocho"}},
	}}

	rec := do(exportHandler(fixture, nil), httptest.NewRequest(http.MethodGet, exportURL(fixture.Itinerary.ID, "html"), nil), uuid.Nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Cafes")
	assert.Contains(t, body, "Glitch Coffee")
	assert.NotContains(t, body, "Day 1")
}

func TestExportItinerary_UnknownFormatIs400(t *testing.T) {
	fixture := exportFixture()

	rec := do(exportHandler(fixture, nil), httptest.NewRequest(http.MethodGet, exportURL(fixture.Itinerary.ID, "xlsx"), nil), uuid.Nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "format must be one of: json, csv, html", errorMessage(t, rec))
}

func TestExportItinerary_ServiceErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{errBoom, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			h := exportHandler(domain.Export{}, fmt.Errorf("service: %w", tc.err))

			rec := do(h, httptest.NewRequest(http.MethodGet, exportURL(uuid.New(), "csv"), nil), uuid.Nil)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestExportItinerary_NonUUIDIs404(t *testing.T) {
	rec := do(exportHandler(domain.Export{}, nil), httptest.NewRequest(http.MethodGet, "/itineraries/tokyo-week/export", nil), uuid.Nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
