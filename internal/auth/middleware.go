package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/performproject/backend/internal/model"
)

// IdentityResolver turns a bearer token into a full user record. It is
// implemented by service.AuthService; the middleware depends on the
// interface so this package never imports the service layer.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*model.User, error)
}

// contextKey is an unexported type used for context keys in this package.
// Using a package-private type means only this package can read or write
// the identity value — no other package can collide with the key.
type contextKey string

const userKey contextKey = "user"

// RequireAuth enforces authentication on protected routes.
//
// It reads the token from the Authorization header ("Bearer <token>"),
// resolves it to a user record, and stores the record in the request
// context. A missing, malformed, expired, or orphaned token ends the
// request with 401 before the handler runs.
//
// The resolver hits the database once per request (token subject → user
// row), so handlers downstream get the full, current record — not just
// the claims — and a token for a since-deleted user is rejected here.
func RequireAuth(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveRequestUser(r, resolver)
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid_token","message":"could not validate credentials"}`))
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user from the request context.
//
// Returns (nil, false) on anonymous requests. On a RequireAuth-protected
// route it always returns (user, true).
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// resolveRequestUser extracts the bearer token and resolves it.
func resolveRequestUser(r *http.Request, resolver IdentityResolver) (*model.User, error) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, errors.New("auth: missing bearer token")
	}

	return resolver.ResolveIdentity(r.Context(), token)
}
