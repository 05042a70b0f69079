package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/petermazzocco/foodgram/internal/identity"
	"github.com/petermazzocco/foodgram/internal/query"
	"github.com/petermazzocco/foodgram/internal/recipes"
	"github.com/petermazzocco/foodgram/internal/relations"
	"github.com/petermazzocco/foodgram/internal/views"
)

type recipeRequest struct {
	Ingredients *[]recipes.IngredientAmount `json:"ingredients"`
	Tags        *[]uint                     `json:"tags"`
	Image       *string                     `json:"image"`
	Name        *string                     `json:"name"`
	Text        *string                     `json:"text"`
	CookingTime *int                        `json:"cooking_time"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	req := identity.FromContext(r.Context())
	p, err := h.paging(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	win := p.window()
	crit := query.Criteria{
		Tags:   r.URL.Query()["tags"],
		Offset: win.Offset,
		Limit:  win.Limit,
	}
	if r.URL.Query().Get("author") != "" {
		id, err := positiveInt(r, "author", 0)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		author := uint(id)
		crit.Author = &author
	}
	if crit.IsFavorited, err = flag(r, "is_favorited"); err != nil {
		h.fail(w, r, err)
		return
	}
	if crit.IsInShoppingCart, err = flag(r, "is_in_shopping_cart"); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.Query.SelectRecipes(r.Context(), crit, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for i := range result.Recipes {
		h.recipeImages(&result.Recipes[i])
	}
	writeJSON(w, http.StatusOK, newPage(r, p, int64(result.Count), result.Recipes))
}

func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	recipe, err := h.Recipes.Get(r.Context(), identity.FromContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.recipeImages(recipe)
	writeJSON(w, http.StatusOK, recipe)
}

func (h *Handler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	req := identity.FromContext(r.Context())
	var body recipeRequest
	if err := decode(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	in := recipes.CreateInput{
		Title:       deref(body.Name),
		Text:        deref(body.Text),
		CookingTime: deref(body.CookingTime),
		Ingredients: deref(body.Ingredients),
		Tags:        deref(body.Tags),
	}
	if err := h.Recipes.Check(r.Context(), req, in); err != nil {
		h.fail(w, r, err)
		return
	}
	key, err := h.uploadImage(r.Context(), req.UserID, deref(body.Image))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in.Image = key
	recipe, err := h.Recipes.Create(r.Context(), req, in)
	if err != nil {
		h.discardImage(r.Context(), key)
		h.fail(w, r, err)
		return
	}
	h.recipeImages(recipe)
	writeJSON(w, http.StatusCreated, recipe)
}

func (h *Handler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	req := identity.FromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body recipeRequest
	if err := decode(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	in := recipes.UpdateInput{
		Title:       body.Name,
		Text:        body.Text,
		CookingTime: body.CookingTime,
		Ingredients: body.Ingredients,
		Tags:        body.Tags,
	}
	previous, err := h.Recipes.Editable(r.Context(), req, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var key string
	if body.Image != nil {
		if key, err = h.uploadImage(r.Context(), req.UserID, *body.Image); err != nil {
			h.fail(w, r, err)
			return
		}
		in.Image = &key
	}

	recipe, err := h.Recipes.Update(r.Context(), req, id, in)
	if err != nil {
		h.discardImage(r.Context(), key)
		h.fail(w, r, err)
		return
	}
	if key != "" && key != previous {
		h.discardImage(r.Context(), previous)
	}
	h.recipeImages(recipe)
	writeJSON(w, http.StatusOK, recipe)
}

func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Recipes.Delete(r.Context(), identity.FromContext(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.addRelation(w, r, h.Relations.AddFavorite)
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.removeRelation(w, r, h.Relations.RemoveFavorite)
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	h.addRelation(w, r, h.Relations.AddToCart)
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.removeRelation(w, r, h.Relations.RemoveFromCart)
}

func (h *Handler) addRelation(w http.ResponseWriter, r *http.Request, add func(context.Context, identity.Requester, uint) (*views.RecipeShort, error)) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	short, err := add(r.Context(), identity.FromContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	short.Image = h.Images.URL(short.Image)
	writeJSON(w, http.StatusCreated, short)
}

func (h *Handler) removeRelation(w http.ResponseWriter, r *http.Request, remove func(context.Context, identity.Requester, uint) error) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := remove(r.Context(), identity.FromContext(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadShoppingCart sends the aggregated ingredients of every recipe in the cart as a text file.
func (h *Handler) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	lines, err := h.Relations.ShoppingList(r.Context(), identity.FromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	filename := fmt.Sprintf("shopping-list-%s.txt", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(relations.RenderShoppingList(lines))
}
