// Package handlers exposes the core services over HTTP with chi.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/petermazzocco/foodgram/internal/accounts"
	"github.com/petermazzocco/foodgram/internal/auth"
	"github.com/petermazzocco/foodgram/internal/logging"
	"github.com/petermazzocco/foodgram/internal/query"
	"github.com/petermazzocco/foodgram/internal/recipes"
	"github.com/petermazzocco/foodgram/internal/relations"
	"github.com/petermazzocco/foodgram/internal/subscriptions"
	"github.com/rs/zerolog"
)

// ImageStore saves uploaded recipe images and resolves their public URLs.
type ImageStore interface {
	Save(ctx context.Context, ownerID uint, dataURI string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

type Handler struct {
	Accounts      *accounts.Service
	Recipes       *recipes.Service
	Query         *query.Composer
	Subscriptions *subscriptions.Service
	Relations     *relations.Service
	Images        ImageStore
	Logger        zerolog.Logger
	PageSize      int
}

type RouterOptions struct {
	RateLimitPerMinute int
	AllowedOrigins     []string
	// OAuth mounts the Google login routes when set.
	OAuth bool
}

// NewRouter builds the full HTTP surface. Routes accept paths with or without a trailing slash.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			r.Use(httprate.Limit(
				opts.RateLimitPerMinute,
				1*time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
			))
		}
		r.Use(auth.Middleware(h.Accounts))

		r.Post("/auth/token/login", h.Login)
		r.With(auth.RequireUser).Post("/auth/token/logout", h.Logout)
		if opts.OAuth {
			r.Get("/auth/{provider}", auth.BeginOAuth)
			r.Get("/auth/{provider}/callback", auth.OAuthCallback(h.Accounts, h.Logger))
		}

		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.Register)
			r.Get("/", h.ListUsers)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireUser)
				r.Get("/me", h.Me)
				r.Post("/set_password", h.SetPassword)
				r.Get("/subscriptions", h.ListSubscriptions)
				r.Post("/{id}/subscribe", h.Subscribe)
				r.Delete("/{id}/subscribe", h.Unsubscribe)
			})
			r.Get("/{id}", h.GetUser)
		})

		r.Get("/tags", h.ListTags)
		r.Get("/tags/{id}", h.GetTag)
		r.Get("/ingredients", h.ListIngredients)
		r.Get("/ingredients/{id}", h.GetIngredient)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", h.ListRecipes)
			r.Get("/{id}", h.GetRecipe)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireUser)
				r.Post("/", h.CreateRecipe)
				r.Get("/download_shopping_cart", h.DownloadShoppingCart)
				r.Patch("/{id}", h.UpdateRecipe)
				r.Delete("/{id}", h.DeleteRecipe)
				r.Post("/{id}/favorite", h.AddFavorite)
				r.Delete("/{id}/favorite", h.RemoveFavorite)
				r.Post("/{id}/shopping_cart", h.AddToCart)
				r.Delete("/{id}/shopping_cart", h.RemoveFromCart)
			})
		})
	})
	return r
}
