package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/stashport/internal/domain"
)

// IdentityHeaders names the request headers the auth gateway fills in after
// it has authenticated the caller.
type IdentityHeaders struct {
	UserID string
	Email  string
	Name   string
}

type identityKey struct{}

// NewIdentityHandler returns a middleware that reads the gateway headers and
// stores a *domain.Identity on the request context. A missing or malformed
// user id leaves the request anonymous.
func NewIdentityHandler(h IdentityHeaders) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(h.UserID))
			id, err := uuid.Parse(raw)
			if raw == "" || err != nil || id == uuid.Nil {
				next.ServeHTTP(w, r)
				return
			}
			ident := &domain.Identity{
				UserID:      id,
				Email:       strings.TrimSpace(r.Header.Get(h.Email)),
				DisplayName: strings.TrimSpace(r.Header.Get(h.Name)),
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller, or nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *domain.Identity {
	id, _ := ctx.Value(identityKey{}).(*domain.Identity)
	return id
}
