// Package recipes validates and persists recipes together with their ingredient rows and tags.
package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/petermazzocco/foodgram/internal/apperr"
	"github.com/petermazzocco/foodgram/internal/identity"
	"github.com/petermazzocco/foodgram/internal/resolver"
	"github.com/petermazzocco/foodgram/internal/store"
	"github.com/petermazzocco/foodgram/internal/views"
	"github.com/petermazzocco/foodgram/models"
	"gorm.io/gorm"
)

const maxTitleLen = 200

// IngredientAmount references a catalog ingredient and the quantity used.
type IngredientAmount struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

type CreateInput struct {
	Title       string
	Text        string
	Image       string
	CookingTime int
	Ingredients []IngredientAmount
	Tags        []uint
}

// UpdateInput carries a partial update. Nil fields are left untouched; a non-nil
// Ingredients or Tags replaces the whole stored set.
type UpdateInput struct {
	Title       *string
	Text        *string
	Image       *string
	CookingTime *int
	Ingredients *[]IngredientAmount
	Tags        *[]uint
}

type Service struct {
	db  *gorm.DB
	res *resolver.Resolver
}

func New(db *gorm.DB, res *resolver.Resolver) *Service {
	return &Service{db: db, res: res}
}

// Check applies every Create rule except the image one without writing anything,
// so callers can reject a request before storing its image.
func (s *Service) Check(ctx context.Context, author identity.Requester, in CreateInput) error {
	if err := checkCreate(author, in); err != nil {
		return err
	}
	_, _, err := validate(ctx, s.db.WithContext(ctx), &in.CookingTime, &in.Tags, &in.Ingredients)
	return storeFailure(err, "check recipe")
}

// Editable reports whether req may change the recipe and returns its current image key.
func (s *Service) Editable(ctx context.Context, req identity.Requester, id uint) (string, error) {
	if !req.IsAuthenticated() {
		return "", apperr.Unauthorized("authentication required")
	}
	existing, err := store.FindRecipeOwner(ctx, s.db, id)
	if errors.Is(err, store.ErrNotFound) {
		return "", apperr.Missing("recipe", "recipe not found")
	}
	if err != nil {
		return "", apperr.Wrap(err, "load recipe")
	}
	if !req.CanModify(existing.AuthorID) {
		return "", apperr.Denied("only the author can change this recipe")
	}
	return existing.Image, nil
}

// Create stores a new recipe owned by the requester.
func (s *Service) Create(ctx context.Context, author identity.Requester, in CreateInput) (*views.Recipe, error) {
	if err := checkCreate(author, in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Image) == "" {
		return nil, apperr.Invalid("image", "required", "image is required")
	}

	var id uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, rows, err := validate(ctx, tx, &in.CookingTime, &in.Tags, &in.Ingredients)
		if err != nil {
			return err
		}

		authorID := author.UserID
		recipe := models.Recipe{
			AuthorID:    &authorID,
			Title:       strings.TrimSpace(in.Title),
			Text:        in.Text,
			Image:       in.Image,
			CookingTime: in.CookingTime,
		}
		if err := store.InsertRecipe(ctx, tx, &recipe); err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		if err := store.ReplaceRecipeIngredients(ctx, tx, recipe.ID, rows); err != nil {
			return fmt.Errorf("insert recipe ingredients: %w", err)
		}
		if err := store.ReplaceRecipeTags(ctx, tx, recipe.ID, tags); err != nil {
			return fmt.Errorf("attach recipe tags: %w", err)
		}
		id = recipe.ID
		return nil
	})
	if err != nil {
		return nil, storeFailure(err, "create recipe")
	}
	return s.Get(ctx, author, id)
}

// Update applies a partial update. Only the author or an admin may change a recipe.
func (s *Service) Update(ctx context.Context, req identity.Requester, id uint, in UpdateInput) (*views.Recipe, error) {
	if !req.IsAuthenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := store.FindRecipeOwner(ctx, tx, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Missing("recipe", "recipe not found")
		}
		if err != nil {
			return fmt.Errorf("load recipe: %w", err)
		}
		if !req.CanModify(existing.AuthorID) {
			return apperr.Denied("only the author can change this recipe")
		}

		fields := map[string]any{}
		if in.Title != nil {
			if err := checkText("name", *in.Title, maxTitleLen); err != nil {
				return err
			}
			fields["title"] = strings.TrimSpace(*in.Title)
		}
		if in.Text != nil {
			if err := checkText("text", *in.Text, 0); err != nil {
				return err
			}
			fields["text"] = *in.Text
		}
		if in.Image != nil {
			if strings.TrimSpace(*in.Image) == "" {
				return apperr.Invalid("image", "required", "image may not be empty")
			}
			fields["image"] = *in.Image
		}

		tags, rows, err := validate(ctx, tx, in.CookingTime, in.Tags, in.Ingredients)
		if err != nil {
			return err
		}
		if in.CookingTime != nil {
			fields["cooking_time"] = *in.CookingTime
		}

		if err := store.UpdateRecipeFields(ctx, tx, id, fields); err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}
		if in.Ingredients != nil {
			if err := store.ReplaceRecipeIngredients(ctx, tx, id, rows); err != nil {
				return fmt.Errorf("replace recipe ingredients: %w", err)
			}
		}
		if in.Tags != nil {
			if err := store.ReplaceRecipeTags(ctx, tx, id, tags); err != nil {
				return fmt.Errorf("replace recipe tags: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeFailure(err, "update recipe")
	}
	return s.Get(ctx, req, id)
}

// Get returns one recipe with the requester's flags resolved.
func (s *Service) Get(ctx context.Context, req identity.Requester, id uint) (*views.Recipe, error) {
	recipe, err := store.FindRecipe(ctx, s.db, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Missing("recipe", "recipe not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "load recipe")
	}
	return s.res.Recipe(ctx, req, *recipe)
}

// Delete removes a recipe along with its ingredient rows, tag links, favorites and cart entries.
func (s *Service) Delete(ctx context.Context, req identity.Requester, id uint) error {
	if !req.IsAuthenticated() {
		return apperr.Unauthorized("authentication required")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := store.FindRecipeOwner(ctx, tx, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Missing("recipe", "recipe not found")
		}
		if err != nil {
			return fmt.Errorf("load recipe: %w", err)
		}
		if !req.CanModify(existing.AuthorID) {
			return apperr.Denied("only the author can delete this recipe")
		}
		if _, err := store.DeleteRecipe(ctx, tx, id); err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		return nil
	})
	return storeFailure(err, "delete recipe")
}

// storeFailure passes classified failures through and marks everything else as internal.
func storeFailure(err error, op string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apperr.Wrap(err, op)
}

func checkCreate(author identity.Requester, in CreateInput) error {
	if !author.IsAuthenticated() {
		return apperr.Unauthorized("authentication required")
	}
	if err := checkText("name", in.Title, maxTitleLen); err != nil {
		return err
	}
	return checkText("text", in.Text, 0)
}

func checkText(field, value string, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Invalid(field, "required", field+" is required")
	}
	if maxLen > 0 && utf8.RuneCountInString(value) > maxLen {
		return apperr.Invalid(field, "max_length", fmt.Sprintf("%s must be at most %d characters", field, maxLen))
	}
	return nil
}
