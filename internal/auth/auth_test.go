package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, err := issuer.GenerateJWT(models.User{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	claims, err := issuer.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.ID)
	assert.Equal(t, "alice", claims.Username)
	require.NotNil(t, claims.ExpiresAt)
}

func TestValidate_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := issuer.GenerateJWT(models.User{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.ValidateJWT(token)
	assert.ErrorIs(t, err, apperr.ErrTokenExpired)
}

func TestValidate_Invalid(t *testing.T) {
	issuer := NewTokenIssuer("secret", 0)
	other := NewTokenIssuer("other", 0)
	token, err := other.GenerateJWT(models.User{ID: "u1"})
	require.NoError(t, err)

	_, err = issuer.ValidateJWT(token)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)

	_, err = issuer.ValidateJWT("garbage")
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)

	// Unsigned tokens are never accepted.
	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{ID: "u1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.ValidateJWT(unsigned)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"BEARER abc", "abc"},
		{"Basic abc", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, BearerToken(r), tt.header)
	}
}

func TestMiddleware(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, err := issuer.GenerateJWT(models.User{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	var seen *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := Middleware(issuer)(next)

	t.Run("no token passes through", func(t *testing.T) {
		seen = nil
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, seen)
	})

	t.Run("non-bearer scheme counts as no token", func(t *testing.T) {
		seen = nil
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, seen)
	})

	t.Run("valid token sets claims", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "u1", seen.ID)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		old := NewTokenIssuer("secret", time.Minute)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		expired, err := old.GenerateJWT(models.User{ID: "u1"})
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+expired)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"token expired"}`, rec.Body.String())
	})
}

type fakeLookup map[string]models.User

func (f fakeLookup) GetUserByID(_ context.Context, id string) (models.User, error) {
	u, ok := f[id]
	if !ok {
		return models.User{}, apperr.ErrNotFound
	}
	return u, nil
}

func TestRequireAdmin(t *testing.T) {
	lookup := fakeLookup{
		"admin": {ID: "admin", Admin: true},
		"user":  {ID: "user"},
		"gone":  {ID: "gone", Admin: true, Disabled: true},
	}
	h := RequireAdmin(lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(claims *Claims) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPut, "/", nil)
		if claims != nil {
			r = r.WithContext(WithClaims(r.Context(), claims))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, serve(&Claims{ID: "admin"}).Code)

	rec := serve(&Claims{ID: "user"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"operation not allowed"}`, rec.Body.String())

	rec = serve(&Claims{ID: "gone"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"operation not allowed"}`, rec.Body.String())

	rec = serve(&Claims{ID: "ghost"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"operation not allowed"}`, rec.Body.String())

	rec = serve(nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token missing"}`, rec.Body.String())
}
