// Package middleware provides HTTP middleware for the portal API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/SevaSetu/scheme_portal/internal/app/auth"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/user"
	"github.com/SevaSetu/scheme_portal/internal/errors"
	"github.com/SevaSetu/scheme_portal/pkg/logger"
)

type contextKey string

const identityKey contextKey = "identity"

// AuthMiddleware authenticates requests via bearer tokens.
type AuthMiddleware struct {
	tokens    *auth.TokenService
	logger    *logger.Logger
	skipPaths map[string]bool
}

// NewAuthMiddleware creates a new authentication middleware. Requests to
// skipPaths bypass authentication.
func NewAuthMiddleware(tokens *auth.TokenService, log *logger.Logger, skipPaths []string) *AuthMiddleware {
	if log == nil {
		log = logger.NewDefault("auth-middleware")
	}
	skip := make(map[string]bool)
	for _, path := range skipPaths {
		skip[path] = true
	}
	return &AuthMiddleware{tokens: tokens, logger: log, skipPaths: skip}
}

// Handler returns the middleware handler. A missing credential yields 401; a
// credential that fails verification yields 403. On success the verified
// identity is attached to the request context.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, errors.Unauthorized("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			respondError(w, errors.Unauthorized("invalid authorization header format"))
			return
		}

		identity, err := m.tokens.Verify(parts[1])
		if err != nil {
			m.logger.WithError(err).Warn("token verification failed")
			respondError(w, errors.InvalidToken(err))
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates a handler on the admin role. It must run after the
// authentication handler.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			respondError(w, errors.Unauthorized("authentication required"))
			return
		}
		if identity.Role != user.RoleAdmin {
			respondError(w, errors.Forbidden("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext returns the identity attached by the auth middleware.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}

// WithIdentity attaches an identity to the context. Exported for tests.
func WithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
