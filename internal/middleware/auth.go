package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vermapushpendra/FullBackend/internal/logging"
	"github.com/vermapushpendra/FullBackend/internal/models"
)

type userContextKey struct{}

// Authenticator verifies an access token and resolves the account it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (models.PublicUser, error)
}

// RequireAuth rejects requests that do not carry a valid access token in the
// Authorization header or the accessToken cookie. On success the resolved user
// is stored on the request context.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r)
			if token == "" {
				respondUnauthorized(w, "missing access token")
				return
			}

			user, err := auth.Authenticate(ctx, token)
			if err != nil {
				logging.FromContext(ctx).Warn("request authentication failed", "error", err)
				respondUnauthorized(w, "invalid or expired access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
		})
	}
}

// OptionalAuth attaches the authenticated user to the context when a valid
// access token is present, and lets the request through anonymously otherwise.
func OptionalAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := bearerToken(r); token != "" {
				if user, err := auth.Authenticate(ctx, token); err == nil {
					ctx = WithUser(ctx, user)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, user models.PublicUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the authenticated user stored by RequireAuth.
func UserFromContext(ctx context.Context) (models.PublicUser, bool) {
	user, ok := ctx.Value(userContextKey{}).(models.PublicUser)
	return user, ok
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	if cookie, err := r.Cookie("accessToken"); err == nil {
		return cookie.Value
	}
	return ""
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
