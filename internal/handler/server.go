// Package handler implements the HTTP handlers for the Stashport API.
// All handlers are methods on Server. They are split into domain-specific
// files (health.go, itinerary.go, ...) but share the same Server struct so
// they can reach its dependencies. Routes wires them into a chi router.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/stashport/internal/domain"
	"github.com/pkordes/stashport/internal/middleware"
)

// ItineraryServicer defines the business operations the itinerary handlers
// depend on. It is declared here, in the consumer package, so handler tests
// can inject a mock without touching the database.
type ItineraryServicer interface {
	Get(ctx context.Context, viewer *domain.Identity, id uuid.UUID) (domain.Itinerary, error)
	GetBySlug(ctx context.Context, viewer *domain.Identity, slug string) (domain.Itinerary, error)
	ListOwned(ctx context.Context, viewer *domain.Identity) ([]domain.Itinerary, error)
	Create(ctx context.Context, viewer *domain.Identity, in domain.ItineraryInput) (domain.SaveResult, error)
	Update(ctx context.Context, viewer *domain.Identity, id uuid.UUID, in domain.ItineraryInput) (domain.SaveResult, error)
	Delete(ctx context.Context, viewer *domain.Identity, id uuid.UUID) error
	Explore(ctx context.Context, viewer *domain.Identity, q domain.ExploreQuery) (domain.ExplorePage, error)
}

// ExportServicer flattens one itinerary for download.
type ExportServicer interface {
	Export(ctx context.Context, viewer *domain.Identity, id uuid.UUID) (domain.Export, error)
}

// ShareServicer renders share images.
type ShareServicer interface {
	Generate(ctx context.Context, viewer *domain.Identity, req domain.ShareRequest) (domain.ShareImage, error)
}

// CoverServicer stores cover photo uploads.
type CoverServicer interface {
	Upload(ctx context.Context, viewer *domain.Identity, r io.Reader) (string, error)
}

// Pinger reports database reachability for the health check.
// *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the dependencies of Server. Tests set only the services
// they exercise.
type Services struct {
	Itineraries ItineraryServicer
	Export      ExportServicer
	Share       ShareServicer
	Covers      CoverServicer
	DB          Pinger
}

// Limits caps request bodies. Zero values fall back to 1 MiB for JSON and
// 5 MiB for uploads.
type Limits struct {
	MaxBodyBytes   int64
	MaxUploadBytes int64
}

// multipartOverhead is allowed on top of MaxUploadBytes for the multipart
// framing around the file.
const multipartOverhead = 64 << 10

// Server holds the dependencies of every HTTP handler.
type Server struct {
	itineraries ItineraryServicer
	export      ExportServicer
	share       ShareServicer
	covers      CoverServicer
	db          Pinger
	log         *slog.Logger
	limits      Limits
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, log *slog.Logger, limits Limits) *Server {
	if limits.MaxBodyBytes <= 0 {
		limits.MaxBodyBytes = 1 << 20
	}
	if limits.MaxUploadBytes <= 0 {
		limits.MaxUploadBytes = 5 << 20
	}
	return &Server{
		itineraries: svc.Itineraries,
		export:      svc.Export,
		share:       svc.Share,
		covers:      svc.Covers,
		db:          svc.DB,
		log:         log,
		limits:      limits,
	}
}

// Routes returns the API router. Cross-cutting middleware (request id,
// logging, CORS, identity) is applied by the caller.
func (s *Server) Routes() chi.Router {
	jsonBody := middleware.NewMaxBodySizeHandler(s.limits.MaxBodyBytes)

	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/itineraries", func(r chi.Router) {
		r.Get("/", s.ListItineraries)
		r.With(jsonBody).Post("/", s.CreateItinerary)
		r.Get("/explore", s.ExploreItineraries)
		// {id} also accepts a slug on GET.
		r.Get("/{id}", s.GetItinerary)
		r.With(jsonBody).Put("/{id}", s.UpdateItinerary)
		r.Delete("/{id}", s.DeleteItinerary)
		r.Get("/{id}/export", s.ExportItinerary)
	})

	r.With(jsonBody).Post("/share/generate", s.GenerateShare)
	// The upload route applies its own cap so an oversized file is a 400.
	r.Post("/upload/cover", s.UploadCover)
	return r
}

// viewer returns the caller placed on the context by the identity middleware.
func viewer(r *http.Request) *domain.Identity {
	return middleware.IdentityFromContext(r.Context())
}
