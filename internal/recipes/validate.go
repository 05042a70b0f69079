package recipes

import (
	"context"
	"fmt"

	"github.com/petermazzocco/foodgram/internal/apperr"
	"github.com/petermazzocco/foodgram/internal/store"
	"github.com/petermazzocco/foodgram/models"
	"gorm.io/gorm"
)

// validate checks cooking time, tags and ingredients in that order and stops at the first
// violation. Nil arguments are not being written and are skipped. Lookups run on tx so the
// referenced rows are read in the same transaction that writes the recipe.
func validate(ctx context.Context, tx *gorm.DB, cookingTime *int, tagIDs *[]uint, amounts *[]IngredientAmount) ([]models.Tag, []models.RecipeIngredient, error) {
	if cookingTime != nil && *cookingTime < 1 {
		return nil, nil, apperr.Invalid("cooking_time", "cooking_time_min", "cooking time must be at least 1 minute")
	}

	var tags []models.Tag
	if tagIDs != nil {
		ids := uniqueIDs(*tagIDs)
		if len(ids) == 0 {
			return nil, nil, apperr.Invalid("tags", "tags_required", "at least one tag is required")
		}
		found, err := store.TagsByIDs(ctx, tx, ids)
		if err != nil {
			return nil, nil, fmt.Errorf("load tags: %w", err)
		}
		if len(found) != len(ids) {
			return nil, nil, apperr.Invalid("tags", "unknown_tag", fmt.Sprintf("unknown tag: %d", firstMissing(ids, tagIDsOf(found))))
		}
		tags = found
	}

	var rows []models.RecipeIngredient
	if amounts != nil {
		if len(*amounts) == 0 {
			return nil, nil, apperr.Invalid("ingredients", "ingredients_required", "at least one ingredient is required")
		}
		seen := make(map[uint]bool, len(*amounts))
		ids := make([]uint, 0, len(*amounts))
		for _, item := range *amounts {
			if item.Amount < 1 {
				return nil, nil, apperr.Invalid("ingredients", "amount_min", "ingredient amount must be at least 1")
			}
			if seen[item.ID] {
				return nil, nil, apperr.Invalid("ingredients", "duplicate_ingredient", fmt.Sprintf("duplicate ingredient: %d", item.ID))
			}
			seen[item.ID] = true
			ids = append(ids, item.ID)
		}

		found, err := store.IngredientsByIDs(ctx, tx, ids)
		if err != nil {
			return nil, nil, fmt.Errorf("load ingredients: %w", err)
		}
		if len(found) != len(ids) {
			known := make([]uint, 0, len(found))
			for _, i := range found {
				known = append(known, i.ID)
			}
			return nil, nil, apperr.Invalid("ingredients", "unknown_ingredient", fmt.Sprintf("unknown ingredient: %d", firstMissing(ids, known)))
		}

		rows = make([]models.RecipeIngredient, 0, len(*amounts))
		for _, item := range *amounts {
			rows = append(rows, models.RecipeIngredient{IngredientID: item.ID, Amount: item.Amount})
		}
	}
	return tags, rows, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func tagIDsOf(tags []models.Tag) []uint {
	out := make([]uint, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.ID)
	}
	return out
}

func firstMissing(want, have []uint) uint {
	known := make(map[uint]bool, len(have))
	for _, id := range have {
		known[id] = true
	}
	for _, id := range want {
		if !known[id] {
			return id
		}
	}
	return 0
}
