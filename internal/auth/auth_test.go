package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/petermazzocco/foodgram/internal/apperr"
	"github.com/petermazzocco/foodgram/internal/identity"
	"github.com/stretchr/testify/require"
)

type tokens map[string]identity.Requester

func (t tokens) Authenticate(ctx context.Context, token string) (identity.Requester, error) {
	if token == "broken" {
		return identity.Anonymous(), errors.New("database down")
	}
	who, ok := t[token]
	if !ok {
		return identity.Anonymous(), apperr.Unauthorized("invalid token")
	}
	return who, nil
}

func TestTokenFrom(t *testing.T) {
	cases := map[string]string{
		"Token abc":    "abc",
		"Bearer  xyz ": "xyz",
		"Basic abc":    "",
		"abc":          "",
		"":             "",
	}
	for header, want := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", header)
		require.Equal(t, want, TokenFrom(r), header)
	}
}

func TestMiddleware(t *testing.T) {
	var seen identity.Requester
	h := Middleware(tokens{"good": identity.User(5)})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = identity.FromContext(r.Context())
	}))

	call := func(header string) int {
		seen = identity.Requester{UserID: 999}
		r := httptest.NewRequest(http.MethodGet, "/api/recipes/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, r)
		return rr.Code
	}

	require.Equal(t, http.StatusOK, call("Token good"))
	require.Equal(t, uint(5), seen.UserID)

	require.Equal(t, http.StatusOK, call(""))
	require.False(t, seen.IsAuthenticated())

	require.Equal(t, http.StatusUnauthorized, call("Token bad"))
	require.Equal(t, http.StatusInternalServerError, call("Token broken"))
}

func TestRequireUser(t *testing.T) {
	h := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(rr, r.WithContext(identity.NewContext(r.Context(), identity.User(1))))
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestSetupOAuthNeedsCredentials(t *testing.T) {
	require.False(t, SetupOAuth(OAuthConfig{}))
}
