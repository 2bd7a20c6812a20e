package service

import (
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/pkordes/stashport/internal/domain"
)

// avatarPalette holds the background colours assigned to new profiles.
var avatarPalette = []string{
	"#E4572E", "#F3A712", "#29335C", "#669BBC",
	"#2A9D8F", "#8AB17D", "#B56576", "#6D597A",
}

// avatarColor picks a palette entry from the user id, so a user keeps the
// same colour if the profile is ever recreated.
func avatarColor(id uuid.UUID) string {
	return avatarPalette[xxhash.Sum64(id[:])%uint64(len(avatarPalette))]
}

// newProfile builds the profile row created lazily on a user's first write.
func newProfile(id domain.Identity) domain.Profile {
	name := strings.TrimSpace(id.DisplayName)
	if name == "" {
		name, _, _ = strings.Cut(id.Email, "@")
	}
	if name == "" {
		name = "Traveler"
	}
	return domain.Profile{
		ID:          id.UserID,
		Email:       id.Email,
		DisplayName: name,
		AvatarColor: avatarColor(id.UserID),
	}
}
