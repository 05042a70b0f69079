// Package query composes recipe and catalog lookups from request criteria.
package query

import (
	"context"
	"errors"

	"github.com/petermazzocco/foodgram/internal/apperr"
	"github.com/petermazzocco/foodgram/internal/identity"
	"github.com/petermazzocco/foodgram/internal/resolver"
	"github.com/petermazzocco/foodgram/internal/store"
	"github.com/petermazzocco/foodgram/internal/views"
	"gorm.io/gorm"
)

type Options struct {
	// RequireTags makes a listing without any tag criterion return nothing
	// instead of the whole catalog.
	RequireTags bool
}

// Criteria narrows a recipe listing. Offset and Limit select the page, a
// non-positive Limit returns every match.
type Criteria struct {
	Tags             []string
	Author           *uint
	IsFavorited      bool
	IsInShoppingCart bool
	Offset           int
	Limit            int
}

type RecipePage struct {
	Count   int
	Recipes []views.Recipe
}

type Composer struct {
	db   *gorm.DB
	res  *resolver.Resolver
	opts Options
}

func New(db *gorm.DB, res *resolver.Resolver, opts Options) *Composer {
	return &Composer{db: db, res: res, opts: opts}
}

// SelectRecipes applies author and tag predicates in the store, then the requester's
// favorite and cart filters over the remaining candidates, then the page window.
func (c *Composer) SelectRecipes(ctx context.Context, crit Criteria, req identity.Requester) (*RecipePage, error) {
	tags := nonEmpty(crit.Tags)
	if len(tags) == 0 && c.opts.RequireTags {
		return &RecipePage{Recipes: []views.Recipe{}}, nil
	}

	ids, err := store.CandidateRecipeIDs(ctx, c.db, store.RecipeFilter{AuthorID: crit.Author, TagSlugs: tags})
	if err != nil {
		return nil, apperr.Wrap(err, "select recipes")
	}

	// anonymous requesters have no relations to filter by
	if req.IsAuthenticated() && (crit.IsFavorited || crit.IsInShoppingCart) {
		states, err := c.res.RecipeStates(ctx, req, ids)
		if err != nil {
			return nil, err
		}
		kept := ids[:0]
		for _, id := range ids {
			st := states[id]
			if crit.IsFavorited && !st.IsFavorited {
				continue
			}
			if crit.IsInShoppingCart && !st.IsInShoppingCart {
				continue
			}
			kept = append(kept, id)
		}
		ids = kept
	}

	page := &RecipePage{Count: len(ids), Recipes: []views.Recipe{}}
	ids = window(ids, crit.Offset, crit.Limit)
	if len(ids) == 0 {
		return page, nil
	}

	loaded, err := store.LoadRecipes(ctx, c.db, ids)
	if err != nil {
		return nil, apperr.Wrap(err, "load recipes")
	}
	page.Recipes, err = c.res.Recipes(ctx, req, loaded)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// SelectIngredients searches the catalog by name fragment, prefix matches first.
func (c *Composer) SelectIngredients(ctx context.Context, fragment string) ([]views.Ingredient, error) {
	items, err := store.SearchIngredients(ctx, c.db, fragment)
	if err != nil {
		return nil, apperr.Wrap(err, "search ingredients")
	}
	return views.NewIngredients(items), nil
}

func (c *Composer) GetIngredient(ctx context.Context, id uint) (*views.Ingredient, error) {
	item, err := store.FindIngredient(ctx, c.db, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Missing("ingredient", "ingredient not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "load ingredient")
	}
	v := views.NewIngredient(*item)
	return &v, nil
}

func (c *Composer) ListTags(ctx context.Context) ([]views.Tag, error) {
	tags, err := store.ListTags(ctx, c.db)
	if err != nil {
		return nil, apperr.Wrap(err, "list tags")
	}
	return views.NewTags(tags), nil
}

func (c *Composer) GetTag(ctx context.Context, id uint) (*views.Tag, error) {
	tag, err := store.FindTag(ctx, c.db, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Missing("tag", "tag not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "load tag")
	}
	v := views.NewTag(*tag)
	return &v, nil
}

func window(ids []uint, offset, limit int) []uint {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) {
		return nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return ids
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
