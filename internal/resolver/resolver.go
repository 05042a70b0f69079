// Package resolver computes the per-requester flags shown on recipes and users:
// is_favorited, is_in_shopping_cart and is_subscribed.
package resolver

import (
	"context"

	"github.com/petermazzocco/foodgram/internal/apperr"
	"github.com/petermazzocco/foodgram/internal/identity"
	"github.com/petermazzocco/foodgram/internal/store"
	"github.com/petermazzocco/foodgram/internal/views"
	"github.com/petermazzocco/foodgram/models"
	"gorm.io/gorm"
)

type RecipeState struct {
	IsFavorited      bool
	IsInShoppingCart bool
}

type Resolver struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// RecipeStates returns an entry for every id. Anonymous requesters get all-false entries
// without touching the store. Otherwise one statement answers both flags for every id.
func (r *Resolver) RecipeStates(ctx context.Context, req identity.Requester, ids []uint) (map[uint]RecipeState, error) {
	out := make(map[uint]RecipeState, len(ids))
	for _, id := range ids {
		out[id] = RecipeState{}
	}
	if !req.IsAuthenticated() || len(ids) == 0 {
		return out, nil
	}

	marks, err := store.RelationMarks(ctx, r.db, req.UserID, ids)
	if err != nil {
		return nil, apperr.Wrap(err, "resolve recipe relations")
	}
	for _, m := range marks {
		st := out[m.RecipeID]
		switch m.Kind {
		case store.MarkFavorite:
			st.IsFavorited = true
		case store.MarkCart:
			st.IsInShoppingCart = true
		}
		out[m.RecipeID] = st
	}
	return out, nil
}

// Subscriptions reports for every author id whether the requester follows that author.
func (r *Resolver) Subscriptions(ctx context.Context, req identity.Requester, authorIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(authorIDs))
	for _, id := range authorIDs {
		out[id] = false
	}
	if !req.IsAuthenticated() || len(authorIDs) == 0 {
		return out, nil
	}

	followed, err := store.SubscribedAuthorIDs(ctx, r.db, req.UserID, authorIDs)
	if err != nil {
		return nil, apperr.Wrap(err, "resolve subscriptions")
	}
	for _, id := range followed {
		out[id] = true
	}
	return out, nil
}

// Users builds user views with is_subscribed resolved for the requester.
func (r *Resolver) Users(ctx context.Context, req identity.Requester, users []models.User) ([]views.User, error) {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subs, err := r.Subscriptions(ctx, req, ids)
	if err != nil {
		return nil, err
	}
	out := make([]views.User, 0, len(users))
	for _, u := range users {
		out = append(out, views.NewUser(u, subs[u.ID]))
	}
	return out, nil
}

// Recipes builds full recipe views for loaded recipes, keeping their order.
func (r *Resolver) Recipes(ctx context.Context, req identity.Requester, recipes []models.Recipe) ([]views.Recipe, error) {
	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	seen := make(map[uint]bool)
	for _, rc := range recipes {
		recipeIDs = append(recipeIDs, rc.ID)
		if rc.AuthorID != nil && !seen[*rc.AuthorID] {
			seen[*rc.AuthorID] = true
			authorIDs = append(authorIDs, *rc.AuthorID)
		}
	}

	states, err := r.RecipeStates(ctx, req, recipeIDs)
	if err != nil {
		return nil, err
	}
	subs, err := r.Subscriptions(ctx, req, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]views.Recipe, 0, len(recipes))
	for _, rc := range recipes {
		var author *views.User
		if rc.Author != nil {
			u := views.NewUser(*rc.Author, subs[rc.Author.ID])
			author = &u
		}
		st := states[rc.ID]
		out = append(out, views.NewRecipe(rc, author, st.IsFavorited, st.IsInShoppingCart))
	}
	return out, nil
}

// Recipe is Recipes for a single recipe.
func (r *Resolver) Recipe(ctx context.Context, req identity.Requester, recipe models.Recipe) (*views.Recipe, error) {
	out, err := r.Recipes(ctx, req, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}
