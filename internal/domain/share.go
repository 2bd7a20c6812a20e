package domain

import "github.com/google/uuid"

// ShareStyle is the colour scheme of a share image.
type ShareStyle string

const (
	StyleClassic ShareStyle = "classic"
	StyleDark    ShareStyle = "dark"
	StyleSunset  ShareStyle = "sunset"
)

// ShareFormat is the canvas shape of a share image.
type ShareFormat string

const (
	FormatStory     ShareFormat = "story"
	FormatSquare    ShareFormat = "square"
	FormatLandscape ShareFormat = "landscape"
)

// Size returns the pixel dimensions for the format. Unknown formats render as a story.
func (f ShareFormat) Size() (width, height int) {
	switch f {
	case FormatSquare:
		return 1080, 1080
	case FormatLandscape:
		return 1200, 630
	default:
		return 1080, 1920
	}
}

// ShareRequest asks for a rendered image of an itinerary.
type ShareRequest struct {
	ItineraryID uuid.UUID   `json:"itineraryId" validate:"required"`
	Style       ShareStyle  `json:"style" validate:"omitempty,oneof=classic dark sunset"`
	Format      ShareFormat `json:"format" validate:"omitempty,oneof=story square landscape"`
}

// WithDefaults fills in the classic style and story format when omitted.
func (r ShareRequest) WithDefaults() ShareRequest {
	if r.Style == "" {
		r.Style = StyleClassic
	}
	if r.Format == "" {
		r.Format = FormatStory
	}
	return r
}

// ShareCard is the text content of a share image. The service picks the
// content; a renderer lays it out.
type ShareCard struct {
	Style       ShareStyle
	Format      ShareFormat
	Title       string
	Destination string
	Author      string
	Tags        []string
	// Lines are the day or section headings, each followed by a few of its
	// entries prefixed with "- ".
	Lines []string
}

// ShareImage is a rendered share card ready to send.
type ShareImage struct {
	PNG      []byte
	ETag     string
	Filename string
}
