package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/rs/zerolog"
)

const sessionMaxAge = 86400 * 30

// ExternalLogin signs in a user vouched for by an OAuth provider and returns a bearer token.
type ExternalLogin interface {
	LoginExternal(ctx context.Context, email, firstName, lastName string) (string, error)
}

type OAuthConfig struct {
	GoogleKey     string
	GoogleSecret  string
	CallbackURL   string
	SessionSecret string
	Secure        bool
}

// SetupOAuth registers the Google provider and the cookie store gothic keeps its state in.
// It reports false when no Google credentials are configured.
func SetupOAuth(cfg OAuthConfig) bool {
	if cfg.GoogleKey == "" || cfg.GoogleSecret == "" {
		return false
	}
	goth.UseProviders(google.New(cfg.GoogleKey, cfg.GoogleSecret, cfg.CallbackURL, "email", "profile"))

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.MaxAge(sessionMaxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.Secure
	gothic.Store = store
	return true
}

func withProvider(r *http.Request) *http.Request {
	return gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))
}

// BeginOAuth redirects to the provider's consent page.
func BeginOAuth(w http.ResponseWriter, r *http.Request) {
	gothic.BeginAuthHandler(w, withProvider(r))
}

// OAuthCallback completes the provider login and answers with a bearer token.
func OAuthCallback(logins ExternalLogin, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r = withProvider(r)
		user, err := gothic.CompleteUserAuth(w, r)
		if err != nil {
			logger.Warn().Err(err).Msg("complete oauth login")
			writeError(w, http.StatusUnauthorized, "oauth login failed")
			return
		}
		// the provider session is only needed to finish the handshake
		gothic.Logout(w, r)

		token, err := logins.LoginExternal(r.Context(), user.Email, user.FirstName, user.LastName)
		if err != nil {
			logger.Error().Err(err).Str("provider", user.Provider).Msg("sign in oauth user")
			writeError(w, http.StatusBadRequest, "could not sign in with this account")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"auth_token": token})
	}
}
