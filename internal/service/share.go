package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/pkordes/stashport/internal/domain"
	"github.com/pkordes/stashport/internal/repo"
	"github.com/pkordes/stashport/internal/validate"
)

// Share card content limits.
const (
	shareMaxLines         = 12
	shareEntriesPerHeader = 2
)

// Renderer draws a share card as a PNG.
type Renderer interface {
	Render(ctx context.Context, card domain.ShareCard) ([]byte, error)
}

// ShareService produces share images for itineraries the caller can see.
type ShareService struct {
	itineraries itineraryReader
	profiles    repo.ProfileRepo
	renderer    Renderer
	log         *slog.Logger
}

// NewShareService constructs a ShareService.
func NewShareService(itineraries itineraryReader, profiles repo.ProfileRepo, renderer Renderer, log *slog.Logger) *ShareService {
	return &ShareService{itineraries: itineraries, profiles: profiles, renderer: renderer, log: log}
}

// Generate renders req as a PNG. The caller must be signed in and allowed to
// read the itinerary.
func (s *ShareService) Generate(ctx context.Context, viewer *domain.Identity, req domain.ShareRequest) (domain.ShareImage, error) {
	if viewer == nil {
		return domain.ShareImage{}, fmt.Errorf("service.ShareService.Generate: %w", domain.ErrUnauthorized)
	}
	if err := validate.Struct(req); err != nil {
		return domain.ShareImage{}, fmt.Errorf("service.ShareService.Generate: %w", err)
	}
	req = req.WithDefaults()

	it, err := s.itineraries.Get(ctx, viewer, req.ItineraryID)
	if err != nil {
		return domain.ShareImage{}, fmt.Errorf("service.ShareService.Generate: %w", err)
	}

	card := shareCard(it, req)
	if owner, err := s.profiles.GetByID(ctx, it.UserID); err == nil {
		card.Author = owner.DisplayName
	} else {
		s.log.DebugContext(ctx, "share card without author", "itinerary_id", it.ID, "error", err)
	}

	png, err := s.renderer.Render(ctx, card)
	if err != nil {
		return domain.ShareImage{}, fmt.Errorf("service.ShareService.Generate: render: %w", err)
	}
	return domain.ShareImage{
		PNG:      png,
		ETag:     fmt.Sprintf(`"%016x"`, xxhash.Sum64(png)),
		Filename: it.Slug + "-" + string(req.Format) + ".png",
	}, nil
}

// shareCard selects the card text: the title block plus the first days (or
// sections) with up to two entries each.
func shareCard(it domain.Itinerary, req domain.ShareRequest) domain.ShareCard {
	card := domain.ShareCard{
		Style:       req.Style,
		Format:      req.Format,
		Title:       it.Title,
		Destination: it.Destination,
		Tags:        it.Tags,
	}

	add := func(header string, entries []string) bool {
		if len(card.Lines) >= shareMaxLines {
			return false
		}
		card.Lines = append(card.Lines, header)
		for i, e := range entries {
			if i == shareEntriesPerHeader || len(card.Lines) >= shareMaxLines {
				break
			}
			card.Lines = append(card.Lines, "- "+e)
		}
		return true
	}

	if it.Type == domain.TypeGuide {
		for _, c := range it.Categories {
			titles := make([]string, len(c.Items))
			for i, item := range c.Items {
				titles[i] = item.Title
			}
			if !add(c.Name, titles) {
				break
			}
		}
		return card
	}

	for _, d := range it.Days {
		header := "Day " + strconv.Itoa(d.DayNumber)
		if d.Title != "" {
			header += ": " + d.Title
		}
		titles := make([]string, len(d.Activities))
		for i, a := range d.Activities {
			titles[i] = a.Title
		}
		if !add(header, titles) {
			break
		}
	}
	return card
}
