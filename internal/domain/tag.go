package domain

import "slices"

// MaxTags is the maximum number of tags on a single itinerary.
const MaxTags = 3

// TripTags is the fixed tag vocabulary. Tags are stored lowercase.
var TripTags = []string{
	"adventure",
	"backpacking",
	"beach",
	"budget",
	"city-break",
	"culture",
	"family",
	"food",
	"hiking",
	"luxury",
	"nature",
	"nightlife",
	"road-trip",
	"romantic",
	"solo",
	"wellness",
}

// IsTripTag reports whether tag belongs to the vocabulary.
func IsTripTag(tag string) bool {
	return slices.Contains(TripTags, tag)
}
