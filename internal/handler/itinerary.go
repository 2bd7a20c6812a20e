package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/stashport/internal/domain"
)

// itineraryRequest is the body of POST and PUT /itineraries. Older clients
// send guide sections as "sections"; they are folded into categories here so
// the service sees a single collection.
type itineraryRequest struct {
	domain.ItineraryInput
	Sections []domain.CategoryInput `json:"sections"`
}

func (r itineraryRequest) input() domain.ItineraryInput {
	in := r.ItineraryInput
	if in.Categories == nil && r.Sections != nil {
		in.Categories = r.Sections
	}
	return in
}

// ListItineraries handles GET /itineraries: the caller's own itineraries.
func (s *Server) ListItineraries(w http.ResponseWriter, r *http.Request) {
	list, err := s.itineraries.ListOwned(r.Context(), viewer(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]itineraryResponse, len(list))
	for i, it := range list {
		out[i] = itineraryToResponse(it)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateItinerary handles POST /itineraries.
func (s *Server) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	var body itineraryRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.itineraries.Create(r.Context(), viewer(r), body.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saveToResponse(res))
}

// GetItinerary handles GET /itineraries/{id}. A segment that is not a UUID
// is looked up as a slug.
func (s *Server) GetItinerary(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "id")

	var (
		it  domain.Itinerary
		err error
	)
	if id, perr := uuid.Parse(key); perr == nil {
		it, err = s.itineraries.Get(r.Context(), viewer(r), id)
	} else {
		it, err = s.itineraries.GetBySlug(r.Context(), viewer(r), key)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itineraryToResponse(it))
}

// UpdateItinerary handles PUT /itineraries/{id}.
func (s *Server) UpdateItinerary(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var body itineraryRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.itineraries.Update(r.Context(), viewer(r), id, body.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saveToResponse(res))
}

// DeleteItinerary handles DELETE /itineraries/{id}.
func (s *Server) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.itineraries.Delete(r.Context(), viewer(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ExploreItineraries handles GET /itineraries/explore.
// Query: page, limit (default 12, max 50), destination, tags (comma
// separated), type (daily|guide|all), sort (recent|popular).
func (s *Server) ExploreItineraries(w http.ResponseWriter, r *http.Request) {
	q, err := exploreQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.itineraries.Explore(r.Context(), viewer(r), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exploreToResponse(page))
}

// exploreQuery binds the explore query string.
func exploreQuery(r *http.Request) (domain.ExploreQuery, error) {
	values := r.URL.Query()
	var (
		page, limit                     *int
		destination, tags, typ, sortKey *string
	)
	for name, dst := range map[string]any{"page": &page, "limit": &limit} {
		if err := runtime.BindQueryParameter("form", true, false, name, values, dst); err != nil {
			return domain.ExploreQuery{}, domain.NewValidationError(name + " must be an integer")
		}
	}
	for name, dst := range map[string]any{"destination": &destination, "tags": &tags, "type": &typ, "sort": &sortKey} {
		if err := runtime.BindQueryParameter("form", true, false, name, values, dst); err != nil {
			return domain.ExploreQuery{}, domain.NewValidationError("invalid " + name + " parameter")
		}
	}

	q := domain.ExploreQuery{
		PaginationParams: domain.NewPaginationParams(page, limit),
		Sort:             domain.SortRecent,
	}
	if destination != nil {
		q.Destination = *destination
	}
	if tags != nil {
		q.Tags = domain.ParseTagFilter(*tags)
	}
	if typ != nil {
		switch t := domain.ItineraryType(*typ); t {
		case "", "all":
		case domain.TypeDaily, domain.TypeGuide:
			q.Type = t
		default:
			return domain.ExploreQuery{}, domain.NewValidationError("type must be one of: daily, guide, all")
		}
	}
	if sortKey != nil {
		switch sort := domain.ExploreSort(*sortKey); sort {
		case "":
		case domain.SortRecent, domain.SortPopular:
			q.Sort = sort
		default:
			return domain.ExploreQuery{}, domain.NewValidationError("sort must be one of: recent, popular")
		}
	}
	return q, nil
}

// pathID parses the {id} segment, answering 404 when it is not a UUID.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "itinerary not found")
		return uuid.Nil, false
	}
	return id, true
}
