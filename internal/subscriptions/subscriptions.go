// Package subscriptions manages who follows which author.
package subscriptions

import (
	"context"
	"errors"

	"github.com/petermazzocco/foodgram/internal/apperr"
	"github.com/petermazzocco/foodgram/internal/identity"
	"github.com/petermazzocco/foodgram/internal/store"
	"github.com/petermazzocco/foodgram/internal/views"
	"github.com/petermazzocco/foodgram/models"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Subscribe makes the requester follow authorID and returns the author summary.
// recipesLimit caps the embedded recipes; zero or less embeds them all.
func (s *Service) Subscribe(ctx context.Context, req identity.Requester, authorID uint, recipesLimit int) (*views.Author, error) {
	if !req.IsAuthenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}

	author, err := store.FindUser(ctx, s.db, authorID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Missing("author", "user not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "load author")
	}
	if author.ID == req.UserID {
		return nil, apperr.Conflicting("author", "self_subscription", "you cannot subscribe to yourself")
	}

	exists, err := store.SubscriptionExists(ctx, s.db, req.UserID, authorID)
	if err != nil {
		return nil, apperr.Wrap(err, "check subscription")
	}
	if exists {
		return nil, alreadySubscribed()
	}
	if err := store.InsertSubscription(ctx, s.db, req.UserID, authorID); err != nil {
		// a concurrent subscribe can still win the race, the unique index decides
		if store.IsDuplicate(err) {
			return nil, alreadySubscribed()
		}
		return nil, apperr.Wrap(err, "insert subscription")
	}

	out, err := s.summaries(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Unsubscribe removes the requester's subscription to authorID.
func (s *Service) Unsubscribe(ctx context.Context, req identity.Requester, authorID uint) error {
	if !req.IsAuthenticated() {
		return apperr.Unauthorized("authentication required")
	}
	exists, err := store.UserExists(ctx, s.db, authorID)
	if err != nil {
		return apperr.Wrap(err, "load author")
	}
	if !exists {
		return apperr.Missing("author", "user not found")
	}

	n, err := store.DeleteSubscription(ctx, s.db, req.UserID, authorID)
	if err != nil {
		return apperr.Wrap(err, "delete subscription")
	}
	if n == 0 {
		return apperr.Conflicting("author", "not_subscribed", "you are not subscribed to this user")
	}
	return nil
}

// List pages through the authors the requester follows.
func (s *Service) List(ctx context.Context, req identity.Requester, w store.Window, recipesLimit int) ([]views.Author, int64, error) {
	if !req.IsAuthenticated() {
		return nil, 0, apperr.Unauthorized("authentication required")
	}
	authors, total, err := store.SubscribedAuthors(ctx, s.db, req.UserID, w)
	if err != nil {
		return nil, 0, apperr.Wrap(err, "list subscriptions")
	}
	out, err := s.summaries(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// summaries builds author views for users the requester follows.
func (s *Service) summaries(ctx context.Context, authors []models.User, recipesLimit int) ([]views.Author, error) {
	ids := make([]uint, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	counts, err := store.CountRecipesByAuthors(ctx, s.db, ids)
	if err != nil {
		return nil, apperr.Wrap(err, "count recipes")
	}
	recent, err := store.RecipesByAuthors(ctx, s.db, ids, recipesLimit)
	if err != nil {
		return nil, apperr.Wrap(err, "load author recipes")
	}

	out := make([]views.Author, 0, len(authors))
	for _, a := range authors {
		short := make([]views.RecipeShort, 0, len(recent[a.ID]))
		for _, r := range recent[a.ID] {
			short = append(short, views.NewRecipeShort(r))
		}
		out = append(out, views.Author{
			User:         views.NewUser(a, true),
			Recipes:      short,
			RecipesCount: counts[a.ID],
		})
	}
	return out, nil
}

func alreadySubscribed() error {
	return apperr.Conflicting("author", "already_subscribed", "you are already subscribed to this user")
}
