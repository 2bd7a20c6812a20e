package service_test

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/stashport/internal/domain"
	"github.com/pkordes/stashport/internal/repo"
)

// Hand-written test doubles: each method is a function field, set only the
// ones a test needs. newFixture fills in defaults that succeed.

type mockItineraryRepo struct {
	insert      func(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error)
	update      func(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error)
	delete      func(ctx context.Context, id uuid.UUID) error
	ownerOf     func(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	getByID     func(ctx context.Context, id uuid.UUID) (domain.Itinerary, error)
	getBySlug   func(ctx context.Context, slug string) (domain.Itinerary, error)
	listByOwner func(ctx context.Context, userID uuid.UUID) ([]domain.Itinerary, error)
	explore     func(ctx context.Context, q domain.ExploreQuery) ([]domain.Summary, int64, error)
}

func (m *mockItineraryRepo) Insert(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error) {
	return m.insert(ctx, it)
}
func (m *mockItineraryRepo) Update(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error) {
	return m.update(ctx, it)
}
func (m *mockItineraryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockItineraryRepo) OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return m.ownerOf(ctx, id)
}
func (m *mockItineraryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Itinerary, error) {
	return m.getByID(ctx, id)
}
func (m *mockItineraryRepo) GetBySlug(ctx context.Context, slug string) (domain.Itinerary, error) {
	return m.getBySlug(ctx, slug)
}
func (m *mockItineraryRepo) ListByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Itinerary, error) {
	return m.listByOwner(ctx, userID)
}
func (m *mockItineraryRepo) Explore(ctx context.Context, q domain.ExploreQuery) ([]domain.Summary, int64, error) {
	return m.explore(ctx, q)
}

type mockDayRepo struct {
	deleteByItinerary func(ctx context.Context, itineraryID uuid.UUID) error
	insertAll         func(ctx context.Context, days []domain.Day) error
}

func (m *mockDayRepo) DeleteByItinerary(ctx context.Context, itineraryID uuid.UUID) error {
	return m.deleteByItinerary(ctx, itineraryID)
}
func (m *mockDayRepo) InsertAll(ctx context.Context, days []domain.Day) error {
	return m.insertAll(ctx, days)
}

type mockCategoryRepo struct {
	deleteByItinerary func(ctx context.Context, itineraryID uuid.UUID) error
	insertAll         func(ctx context.Context, categories []domain.Category) error
}

func (m *mockCategoryRepo) DeleteByItinerary(ctx context.Context, itineraryID uuid.UUID) error {
	return m.deleteByItinerary(ctx, itineraryID)
}
func (m *mockCategoryRepo) InsertAll(ctx context.Context, categories []domain.Category) error {
	return m.insertAll(ctx, categories)
}

type mockTagRepo struct {
	replace func(ctx context.Context, itineraryID uuid.UUID, tags []string) error
}

func (m *mockTagRepo) Replace(ctx context.Context, itineraryID uuid.UUID, tags []string) error {
	return m.replace(ctx, itineraryID, tags)
}

type mockProfileRepo struct {
	ensure  func(ctx context.Context, p domain.Profile) error
	getByID func(ctx context.Context, id uuid.UUID) (domain.Profile, error)
}

func (m *mockProfileRepo) Ensure(ctx context.Context, p domain.Profile) error {
	return m.ensure(ctx, p)
}
func (m *mockProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
	return m.getByID(ctx, id)
}

// fakeTx runs fn directly against the fixture's repos and counts calls.
// Nested calls stand in for savepoints.
type fakeTx struct {
	repos repo.Repos
	calls int
}

func (f *fakeTx) WithinTx(_ context.Context, fn func(repo.Repos) error) error {
	f.calls++
	return fn(f.repos)
}

// compile-time checks: the mocks must satisfy the repo interfaces.
var (
	_ repo.ItineraryRepo = (*mockItineraryRepo)(nil)
	_ repo.DayRepo       = (*mockDayRepo)(nil)
	_ repo.CategoryRepo  = (*mockCategoryRepo)(nil)
	_ repo.TagRepo       = (*mockTagRepo)(nil)
	_ repo.ProfileRepo   = (*mockProfileRepo)(nil)
	_ repo.Transactor    = (*fakeTx)(nil)
)

// fixture bundles one set of mocks. Every default succeeds: inserts and
// updates echo their input, reads return notFound.
type fixture struct {
	its      *mockItineraryRepo
	days     *mockDayRepo
	cats     *mockCategoryRepo
	tags     *mockTagRepo
	profiles *mockProfileRepo
	tx       *fakeTx
}

func newFixture() *fixture {
	notFound := func(_ context.Context, _ uuid.UUID) (domain.Itinerary, error) {
		return domain.Itinerary{}, domain.ErrNotFound
	}
	return &fixture{
		its: &mockItineraryRepo{
			insert:  func(_ context.Context, it domain.Itinerary) (domain.Itinerary, error) { return it, nil },
			update:  func(_ context.Context, it domain.Itinerary) (domain.Itinerary, error) { return it, nil },
			delete:  func(_ context.Context, _ uuid.UUID) error { return nil },
			getByID: notFound,
			ownerOf: func(_ context.Context, _ uuid.UUID) (uuid.UUID, error) { return uuid.Nil, domain.ErrNotFound },
		},
		days: &mockDayRepo{
			deleteByItinerary: func(_ context.Context, _ uuid.UUID) error { return nil },
			insertAll:         func(_ context.Context, _ []domain.Day) error { return nil },
		},
		cats: &mockCategoryRepo{
			deleteByItinerary: func(_ context.Context, _ uuid.UUID) error { return nil },
			insertAll:         func(_ context.Context, _ []domain.Category) error { return nil },
		},
		tags: &mockTagRepo{
			replace: func(_ context.Context, _ uuid.UUID, _ []string) error { return nil },
		},
		profiles: &mockProfileRepo{
			ensure: func(_ context.Context, _ domain.Profile) error { return nil },
			getByID: func(_ context.Context, _ uuid.UUID) (domain.Profile, error) {
				return domain.Profile{}, domain.ErrNotFound
			},
		},
		tx: &fakeTx{},
	}
}

func (f *fixture) repos() repo.Repos {
	r := repo.Repos{
		Itineraries: f.its,
		Days:        f.days,
		Categories:  f.cats,
		Tags:        f.tags,
		Profiles:    f.profiles,
		Tx:          f.tx,
	}
	f.tx.repos = r
	return r
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func identity() *domain.Identity {
	return &domain.Identity{UserID: uuid.New(), Email: "u1@example.com", DisplayName: "Una"}
}

func ptr[T any](v T) *T {
	return &v
}
