// Package service contains the business logic for the Stashport API.
// Services validate inputs, enforce ownership, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/pkordes/stashport/internal/domain"
	"github.com/pkordes/stashport/internal/repo"
	"github.com/pkordes/stashport/internal/slug"
	"github.com/pkordes/stashport/internal/validate"
)

// slugAttempts bounds the insert retries on a slug collision.
const slugAttempts = 5

// ItineraryService implements the itinerary aggregate: assembled reads,
// create and update with replace-children semantics, delete, and explore.
type ItineraryService struct {
	repos repo.Repos
	log   *slog.Logger
}

// NewItineraryService constructs an ItineraryService over repos.
func NewItineraryService(repos repo.Repos, log *slog.Logger) *ItineraryService {
	return &ItineraryService{repos: repos, log: log}
}

// Get returns the assembled itinerary if viewer may see it.
// A nil viewer is anonymous.
func (s *ItineraryService) Get(ctx context.Context, viewer *domain.Identity, id uuid.UUID) (domain.Itinerary, error) {
	it, err := s.repos.Itineraries.GetByID(ctx, id)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Get: %w", err)
	}
	if !it.CanView(viewer) {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Get: %w", domain.ErrForbidden)
	}
	return reshape(it), nil
}

// GetBySlug is Get keyed by the public slug.
func (s *ItineraryService) GetBySlug(ctx context.Context, viewer *domain.Identity, slugValue string) (domain.Itinerary, error) {
	it, err := s.repos.Itineraries.GetBySlug(ctx, slugValue)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.GetBySlug: %w", err)
	}
	if !it.CanView(viewer) {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.GetBySlug: %w", domain.ErrForbidden)
	}
	return reshape(it), nil
}

// ListOwned returns every itinerary owned by viewer, newest first.
func (s *ItineraryService) ListOwned(ctx context.Context, viewer *domain.Identity) ([]domain.Itinerary, error) {
	if viewer == nil {
		return nil, fmt.Errorf("service.ItineraryService.ListOwned: %w", domain.ErrUnauthorized)
	}
	list, err := s.repos.Itineraries.ListByOwner(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.ListOwned: %w", err)
	}
	out := make([]domain.Itinerary, len(list))
	for i, it := range list {
		out[i] = reshape(it)
	}
	return out, nil
}

// Create validates the whole payload, then writes the itinerary, its tags and
// its active child collection in one transaction. Profile and tag writes run
// in savepoints; their failures become warnings on the result.
func (s *ItineraryService) Create(ctx context.Context, viewer *domain.Identity, in domain.ItineraryInput) (domain.SaveResult, error) {
	if viewer == nil {
		return domain.SaveResult{}, fmt.Errorf("service.ItineraryService.Create: %w", domain.ErrUnauthorized)
	}
	in = in.Normalized()
	if err := validate.Struct(in); err != nil {
		return domain.SaveResult{}, fmt.Errorf("service.ItineraryService.Create: %w", err)
	}

	it := domain.Itinerary{
		ID:            uuid.New(),
		UserID:        viewer.UserID,
		Title:         in.Title,
		Description:   in.Description,
		Destination:   in.Destination,
		IsPublic:      in.Public(),
		BudgetLevel:   in.BudgetLevel,
		Type:          in.ResolvedType(),
		CoverPhotoURL: in.CoverPhotoURL,
		StashedFromID: in.StashedFromID,
	}

	var warnings []string
	err := s.repos.Tx.WithinTx(ctx, func(r repo.Repos) error {
		profile := newProfile(*viewer)
		if w := s.secondary(ctx, r, "profile", it.ID, func(sp repo.Repos) error {
			return sp.Profiles.Ensure(ctx, profile)
		}); w != "" {
			warnings = append(warnings, w)
		}

		created, err := insertWithUniqueSlug(ctx, r.Itineraries, it)
		if err != nil {
			return err
		}
		it = created

		if w := s.secondary(ctx, r, "tags", it.ID, func(sp repo.Repos) error {
			return sp.Tags.Replace(ctx, it.ID, in.Tags)
		}); w != "" {
			warnings = append(warnings, w)
		}

		if it.Type == domain.TypeGuide {
			return r.Categories.InsertAll(ctx, buildCategories(it.ID, in.Categories))
		}
		return r.Days.InsertAll(ctx, buildDays(it.ID, in.Days))
	})
	if err != nil {
		return domain.SaveResult{}, fmt.Errorf("service.ItineraryService.Create: %w", err)
	}

	return domain.SaveResult{Itinerary: s.refetch(ctx, it), Warnings: warnings}, nil
}

// Update overwrites the itinerary row and replaces its tags and children.
// Children are replaced by the categories payload when the request type is
// guide and categories were sent, otherwise by the days payload when present.
// Absent collections are left untouched.
func (s *ItineraryService) Update(ctx context.Context, viewer *domain.Identity, id uuid.UUID, in domain.ItineraryInput) (domain.SaveResult, error) {
	if err := s.authorizeOwner(ctx, viewer, id); err != nil {
		return domain.SaveResult{}, fmt.Errorf("service.ItineraryService.Update: %w", err)
	}
	in = in.Normalized()
	if err := validate.Struct(in); err != nil {
		return domain.SaveResult{}, fmt.Errorf("service.ItineraryService.Update: %w", err)
	}

	row := domain.Itinerary{
		ID:            id,
		UserID:        viewer.UserID,
		Title:         in.Title,
		Description:   in.Description,
		Destination:   in.Destination,
		IsPublic:      in.Public(),
		BudgetLevel:   in.BudgetLevel,
		Type:          in.Type,
		CoverPhotoURL: in.CoverPhotoURL,
	}

	var (
		saved    domain.Itinerary
		warnings []string
	)
	err := s.repos.Tx.WithinTx(ctx, func(r repo.Repos) error {
		updated, err := r.Itineraries.Update(ctx, row)
		if err != nil {
			return err
		}
		saved = updated

		if w := s.secondary(ctx, r, "tags", id, func(sp repo.Repos) error {
			return sp.Tags.Replace(ctx, id, in.Tags)
		}); w != "" {
			warnings = append(warnings, w)
		}

		switch {
		case in.Type == domain.TypeGuide && in.Categories != nil:
			if err := r.Categories.DeleteByItinerary(ctx, id); err != nil {
				return err
			}
			return r.Categories.InsertAll(ctx, buildCategories(id, in.Categories))
		case in.Days != nil:
			if err := r.Days.DeleteByItinerary(ctx, id); err != nil {
				return err
			}
			return r.Days.InsertAll(ctx, buildDays(id, in.Days))
		}
		return nil
	})
	if err != nil {
		return domain.SaveResult{}, fmt.Errorf("service.ItineraryService.Update: %w", err)
	}

	return domain.SaveResult{Itinerary: s.refetch(ctx, saved), Warnings: warnings}, nil
}

// Delete removes an owned itinerary. Children and tags go with it by cascade.
func (s *ItineraryService) Delete(ctx context.Context, viewer *domain.Identity, id uuid.UUID) error {
	if err := s.authorizeOwner(ctx, viewer, id); err != nil {
		return fmt.Errorf("service.ItineraryService.Delete: %w", err)
	}
	if err := s.repos.Itineraries.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ItineraryService.Delete: %w", err)
	}
	return nil
}

// Explore returns one page of public itineraries. An authenticated viewer
// does not see their own.
func (s *ItineraryService) Explore(ctx context.Context, viewer *domain.Identity, q domain.ExploreQuery) (domain.ExplorePage, error) {
	if viewer != nil {
		self := viewer.UserID
		q.ExcludeUser = &self
	}
	if q.Sort == "" {
		q.Sort = domain.SortRecent
	}
	q.PaginationParams = domain.NewPaginationParams(&q.Page, &q.Limit)

	items, total, err := s.repos.Itineraries.Explore(ctx, q)
	if err != nil {
		return domain.ExplorePage{}, fmt.Errorf("service.ItineraryService.Explore: %w", err)
	}
	return domain.NewExplorePage(items, q.PaginationParams, total), nil
}

// authorizeOwner fails with ErrUnauthorized for anonymous callers, ErrNotFound
// for a missing itinerary, and ErrForbidden for someone else's.
func (s *ItineraryService) authorizeOwner(ctx context.Context, viewer *domain.Identity, id uuid.UUID) error {
	if viewer == nil {
		return domain.ErrUnauthorized
	}
	owner, err := s.repos.Itineraries.OwnerOf(ctx, id)
	if err != nil {
		return err
	}
	if owner != viewer.UserID {
		return domain.ErrForbidden
	}
	return nil
}

// secondary runs fn in a savepoint of r. A failure is rolled back, logged,
// and returned as a client-facing warning instead of an error.
func (s *ItineraryService) secondary(ctx context.Context, r repo.Repos, what string, itineraryID uuid.UUID, fn func(repo.Repos) error) string {
	if err := r.Tx.WithinTx(ctx, fn); err != nil {
		s.log.WarnContext(ctx, "secondary write failed",
			"write", what,
			"itinerary_id", itineraryID,
			"error", err,
		)
		return what + " could not be saved"
	}
	return ""
}

// refetch reloads the saved itinerary with its children and tags. If that
// read fails the bare row is returned.
func (s *ItineraryService) refetch(ctx context.Context, saved domain.Itinerary) domain.Itinerary {
	full, err := s.repos.Itineraries.GetByID(ctx, saved.ID)
	if err != nil {
		s.log.WarnContext(ctx, "re-fetch after save failed",
			"itinerary_id", saved.ID,
			"error", err,
		)
		return reshape(saved)
	}
	return reshape(full)
}

// insertWithUniqueSlug inserts it under a slug derived from its title,
// appending a random suffix on each collision.
func insertWithUniqueSlug(ctx context.Context, r repo.ItineraryRepo, it domain.Itinerary) (domain.Itinerary, error) {
	base := slug.Make(it.Title)
	it.Slug = base
	for range slugAttempts {
		created, err := r.Insert(ctx, it)
		if !errors.Is(err, domain.ErrConflict) {
			return created, err
		}
		it.Slug = slug.WithSuffix(base)
	}
	return domain.Itinerary{}, fmt.Errorf("no free slug for %q after %d attempts: %w", base, slugAttempts, domain.ErrConflict)
}

// reshape sorts categories and their items by sort order and replaces nil
// collections with empty ones. Days and activities keep storage order.
func reshape(it domain.Itinerary) domain.Itinerary {
	if it.Tags == nil {
		it.Tags = []string{}
	}

	days := make([]domain.Day, len(it.Days))
	for i, d := range it.Days {
		if d.Activities == nil {
			d.Activities = []domain.Activity{}
		}
		days[i] = d
	}
	it.Days = days

	cats := make([]domain.Category, len(it.Categories))
	for i, c := range it.Categories {
		items := slices.Clone(c.Items)
		if items == nil {
			items = []domain.CategoryItem{}
		}
		slices.SortStableFunc(items, func(a, b domain.CategoryItem) int {
			return cmp.Compare(a.SortOrder, b.SortOrder)
		})
		c.Items = items
		cats[i] = c
	}
	slices.SortStableFunc(cats, func(a, b domain.Category) int {
		return cmp.Compare(a.SortOrder, b.SortOrder)
	})
	it.Categories = cats
	return it
}
