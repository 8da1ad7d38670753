package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/pricebook/pkg/auth"
	"github.com/shashiranjanraj/pricebook/pkg/logger"
	"github.com/shashiranjanraj/pricebook/pkg/response"
)

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// RequireRole rejects requests without a valid token carrying role:
// 401 for a missing or bad token, 403 for the wrong role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				response.Unauthorized(w)
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("rejected token", "error", err)
				response.Unauthorized(w)
				return
			}

			if err := auth.RequireRole(claims, role); errors.Is(err, auth.ErrForbidden) {
				response.Forbidden(w)
				return
			}

			logger.WithCtx(r.Context()).Debug("operator authenticated", "subject", claims.Subject)
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches claims from a valid bearer token and otherwise lets
// the request through untouched. Resolvers decide per field what they need.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := BearerToken(r); token != "" {
			if claims, err := auth.ValidateToken(token); err == nil {
				r = r.WithContext(auth.WithClaims(r.Context(), claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}
