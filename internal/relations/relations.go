// Package relations manages a user's favorite recipes and shopping cart.
package relations

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/petermazzocco/foodgram/internal/apperr"
	"github.com/petermazzocco/foodgram/internal/identity"
	"github.com/petermazzocco/foodgram/internal/store"
	"github.com/petermazzocco/foodgram/internal/views"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// relation describes one user-to-recipe table and the rules reported for it.
type relation struct {
	insert     func(ctx context.Context, db *gorm.DB, userID, recipeID uint) error
	remove     func(ctx context.Context, db *gorm.DB, userID, recipeID uint) (int64, error)
	field      string
	dupRule    string
	dupMsg     string
	absentRule string
	absentMsg  string
}

var (
	favorites = relation{
		insert:     store.InsertFavorite,
		remove:     store.DeleteFavorite,
		field:      "favorite",
		dupRule:    "already_favorited",
		dupMsg:     "recipe is already in favorites",
		absentRule: "not_favorited",
		absentMsg:  "recipe is not in favorites",
	}
	cart = relation{
		insert:     store.InsertCartItem,
		remove:     store.DeleteCartItem,
		field:      "shopping_cart",
		dupRule:    "already_in_cart",
		dupMsg:     "recipe is already in the shopping cart",
		absentRule: "not_in_cart",
		absentMsg:  "recipe is not in the shopping cart",
	}
)

func (s *Service) AddFavorite(ctx context.Context, req identity.Requester, recipeID uint) (*views.RecipeShort, error) {
	return s.add(ctx, req, recipeID, favorites)
}

func (s *Service) RemoveFavorite(ctx context.Context, req identity.Requester, recipeID uint) error {
	return s.remove(ctx, req, recipeID, favorites)
}

func (s *Service) AddToCart(ctx context.Context, req identity.Requester, recipeID uint) (*views.RecipeShort, error) {
	return s.add(ctx, req, recipeID, cart)
}

func (s *Service) RemoveFromCart(ctx context.Context, req identity.Requester, recipeID uint) error {
	return s.remove(ctx, req, recipeID, cart)
}

func (s *Service) add(ctx context.Context, req identity.Requester, recipeID uint, rel relation) (*views.RecipeShort, error) {
	if !req.IsAuthenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}
	recipe, err := store.FindRecipe(ctx, s.db, recipeID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Missing("recipe", "recipe not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "load recipe")
	}

	if err := rel.insert(ctx, s.db, req.UserID, recipeID); err != nil {
		if store.IsDuplicate(err) {
			return nil, apperr.Conflicting(rel.field, rel.dupRule, rel.dupMsg)
		}
		if store.IsForeignKey(err) {
			return nil, apperr.Missing("recipe", "recipe not found")
		}
		return nil, apperr.Wrap(err, "add "+rel.field)
	}
	short := views.NewRecipeShort(*recipe)
	return &short, nil
}

func (s *Service) remove(ctx context.Context, req identity.Requester, recipeID uint, rel relation) error {
	if !req.IsAuthenticated() {
		return apperr.Unauthorized("authentication required")
	}
	exists, err := store.RecipeExists(ctx, s.db, recipeID)
	if err != nil {
		return apperr.Wrap(err, "load recipe")
	}
	if !exists {
		return apperr.Missing("recipe", "recipe not found")
	}

	n, err := rel.remove(ctx, s.db, req.UserID, recipeID)
	if err != nil {
		return apperr.Wrap(err, "remove "+rel.field)
	}
	if n == 0 {
		return apperr.Conflicting(rel.field, rel.absentRule, rel.absentMsg)
	}
	return nil
}

// ShoppingList sums ingredient amounts over every recipe in the requester's cart.
func (s *Service) ShoppingList(ctx context.Context, req identity.Requester) ([]store.ShoppingLine, error) {
	if !req.IsAuthenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}
	lines, err := store.ShoppingList(ctx, s.db, req.UserID)
	if err != nil {
		return nil, apperr.Wrap(err, "build shopping list")
	}
	return lines, nil
}

// RenderShoppingList formats the list as the plain-text download body.
func RenderShoppingList(lines []store.ShoppingLine) []byte {
	var buf bytes.Buffer
	buf.WriteString("Shopping list\n\n")
	if len(lines) == 0 {
		buf.WriteString("Your shopping cart is empty.\n")
		return buf.Bytes()
	}
	for _, l := range lines {
		fmt.Fprintf(&buf, "• %s (%s): %d\n", l.Name, l.MeasurementUnit, l.Amount)
	}
	return buf.Bytes()
}
