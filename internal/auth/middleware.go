// Package auth resolves the requester from the Authorization header.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/petermazzocco/foodgram/internal/apperr"
	"github.com/petermazzocco/foodgram/internal/identity"
	"github.com/petermazzocco/foodgram/internal/logging"
)

// Authenticator resolves an opaque bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identity.Requester, error)
}

// TokenFrom extracts the token from "Token <key>" or "Bearer <key>".
func TokenFrom(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok {
		return ""
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Middleware stores the requester in the request context. Requests without a token
// continue anonymously; a token that does not resolve is rejected.
func Middleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFrom(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			who, err := a.Authenticate(r.Context(), token)
			if err != nil {
				status := http.StatusUnauthorized
				if apperr.KindOf(err) == apperr.Internal {
					status = http.StatusInternalServerError
				}
				writeError(w, status, "invalid token")
				return
			}

			logging.Capture(r.Context(), who)
			ctx := identity.NewContext(r.Context(), who)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !identity.FromContext(r.Context()).IsAuthenticated() {
			writeError(w, http.StatusUnauthorized, "authentication credentials were not provided")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   http.StatusText(status),
		"message": msg,
	})
}
