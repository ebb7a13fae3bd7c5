package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
	"github.com/rs/zerolog/log"
)

type contextKey string

// UserClaimsKey is the context key for user claims.
const UserClaimsKey = contextKey("userClaims")

// TokenValidator is satisfied by *TokenIssuer.
type TokenValidator interface {
	ValidateJWT(tokenStr string) (*Claims, error)
}

// UserLookup loads the user a token refers to.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively; any other header value
// counts as no token.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Middleware attaches the token's claims to the request context. Requests
// without a token pass through unauthenticated; requests with a bad token
// are rejected with 401 before reaching the handler.
func Middleware(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := BearerToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := v.ValidateJWT(tokenStr)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected auth token")
				if errors.Is(err, apperr.ErrTokenExpired) {
					writeError(w, http.StatusUnauthorized, apperr.ErrTokenExpired.Error())
					return
				}
				writeError(w, http.StatusUnauthorized, apperr.ErrInvalidToken.Error())
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims placed by Middleware, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*Claims)
	return claims, ok && claims != nil
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, UserClaimsKey, claims)
}

// RequireAdmin only lets through requests whose token belongs to an
// existing, enabled admin user.
func RequireAdmin(lookup UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, apperr.ErrUnauthorized.Error())
				return
			}

			user, err := lookup.GetUserByID(r.Context(), claims.ID)
			if err != nil && !errors.Is(err, apperr.ErrNotFound) && !errors.Is(err, apperr.ErrMalformedID) {
				log.Error().Err(err).Str("user_id", claims.ID).Msg("Failed to load user for admin check")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if err != nil || !user.Admin || user.Disabled {
				writeError(w, http.StatusUnauthorized, apperr.ErrForbidden.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
