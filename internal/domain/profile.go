package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated caller as forwarded by the auth gateway.
// Handlers pass a nil *Identity for anonymous requests.
type Identity struct {
	UserID      uuid.UUID
	Email       string
	DisplayName string
}

// Profile is the public face of an account. Its ID is shared with the auth
// identity. Profiles are created lazily on the first write and never deleted here.
type Profile struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	AvatarColor string
	CreatedAt   time.Time
}
