package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/stashport/internal/domain"
	"github.com/pkordes/stashport/internal/handler"
	"github.com/pkordes/stashport/internal/middleware"
)

// mockItineraryServicer is a test double for handler.ItineraryServicer.
// Set only the method fields your test needs.
type mockItineraryServicer struct {
	get       func(ctx context.Context, viewer *domain.Identity, id uuid.UUID) (domain.Itinerary, error)
	getBySlug func(ctx context.Context, viewer *domain.Identity, slug string) (domain.Itinerary, error)
	listOwned func(ctx context.Context, viewer *domain.Identity) ([]domain.Itinerary, error)
	create    func(ctx context.Context, viewer *domain.Identity, in domain.ItineraryInput) (domain.SaveResult, error)
	update    func(ctx context.Context, viewer *domain.Identity, id uuid.UUID, in domain.ItineraryInput) (domain.SaveResult, error)
	delete    func(ctx context.Context, viewer *domain.Identity, id uuid.UUID) error
	explore   func(ctx context.Context, viewer *domain.Identity, q domain.ExploreQuery) (domain.ExplorePage, error)
}

func (m *mockItineraryServicer) Get(ctx context.Context, v *domain.Identity, id uuid.UUID) (domain.Itinerary, error) {
	return m.get(ctx, v, id)
}
func (m *mockItineraryServicer) GetBySlug(ctx context.Context, v *domain.Identity, slug string) (domain.Itinerary, error) {
	return m.getBySlug(ctx, v, slug)
}
func (m *mockItineraryServicer) ListOwned(ctx context.Context, v *domain.Identity) ([]domain.Itinerary, error) {
	return m.listOwned(ctx, v)
}
func (m *mockItineraryServicer) Create(ctx context.Context, v *domain.Identity, in domain.ItineraryInput) (domain.SaveResult, error) {
	return m.create(ctx, v, in)
}
func (m *mockItineraryServicer) Update(ctx context.Context, v *domain.Identity, id uuid.UUID, in domain.ItineraryInput) (domain.SaveResult, error) {
	return m.update(ctx, v, id, in)
}
func (m *mockItineraryServicer) Delete(ctx context.Context, v *domain.Identity, id uuid.UUID) error {
	return m.delete(ctx, v, id)
}
func (m *mockItineraryServicer) Explore(ctx context.Context, v *domain.Identity, q domain.ExploreQuery) (domain.ExplorePage, error) {
	return m.explore(ctx, v, q)
}

type mockExportServicer struct {
	export func(ctx context.Context, viewer *domain.Identity, id uuid.UUID) (domain.Export, error)
}

func (m *mockExportServicer) Export(ctx context.Context, v *domain.Identity, id uuid.UUID) (domain.Export, error) {
	return m.export(ctx, v, id)
}

type mockShareServicer struct {
	generate func(ctx context.Context, viewer *domain.Identity, req domain.ShareRequest) (domain.ShareImage, error)
}

func (m *mockShareServicer) Generate(ctx context.Context, v *domain.Identity, req domain.ShareRequest) (domain.ShareImage, error) {
	return m.generate(ctx, v, req)
}

type mockCoverServicer struct {
	upload func(ctx context.Context, viewer *domain.Identity, r io.Reader) (string, error)
}

func (m *mockCoverServicer) Upload(ctx context.Context, v *domain.Identity, r io.Reader) (string, error) {
	return m.upload(ctx, v, r)
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(context.Context) error { return m.err }

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.ItineraryServicer = (*mockItineraryServicer)(nil)
	_ handler.ExportServicer    = (*mockExportServicer)(nil)
	_ handler.ShareServicer     = (*mockShareServicer)(nil)
	_ handler.CoverServicer     = (*mockCoverServicer)(nil)
	_ handler.Pinger            = mockPinger{}
)

// ---- helpers ---------------------------------------------------------------

const userHeader = "X-User-Id"

var errBoom = errors.New("boom")

// newHTTPHandler wires a Server with the given services behind the identity
// middleware, the way main.go does in production.
func newHTTPHandler(svc handler.Services) http.Handler {
	return newHTTPHandlerWithLimits(svc, handler.Limits{})
}

func newHTTPHandlerWithLimits(svc handler.Services, limits handler.Limits) http.Handler {
	srv := handler.NewServer(svc, slog.New(slog.DiscardHandler), limits)
	identity := middleware.NewIdentityHandler(middleware.IdentityHeaders{UserID: userHeader})
	return identity(srv.Routes())
}

// do sends req through h, signed in as user when user is not uuid.Nil.
func do(h http.Handler, req *http.Request, user uuid.UUID) *httptest.ResponseRecorder {
	if user != uuid.Nil {
		req.Header.Set(userHeader, user.String())
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

func itineraryFixture() domain.Itinerary {
	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	budget := 2
	return domain.Itinerary{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Title:       "Tokyo Week",
		Description: "Ramen and **temples**",
		Destination: "Tokyo",
		Slug:        "tokyo-week",
		IsPublic:    true,
		BudgetLevel: &budget,
		Type:        domain.TypeDaily,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
		Days: []domain.Day{{
			ID:        uuid.New(),
			DayNumber: 1,
			Date:      &date,
			Title:     "Arrival",
			Activities: []domain.Activity{
				{ID: uuid.New(), Title: "Check in", Location: "Shinjuku", StartTime: "15:00"},
			},
		}},
		Categories: []domain.Category{},
		Tags:       []string{"food", "city"},
	}
}
