package store

import (
	"context"

	"github.com/petermazzocco/foodgram/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func withRecipeGraph(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id ASC") }).
		Preload("IngredientList", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id ASC") }).
		Preload("IngredientList.Ingredient")
}

// FindRecipe loads a recipe with its author, tags and ingredient rows.
func FindRecipe(ctx context.Context, db *gorm.DB, id uint) (*models.Recipe, error) {
	var r models.Recipe
	if err := withRecipeGraph(db.WithContext(ctx)).First(&r, id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadRecipes loads the given recipes newest first with their full graph.
func LoadRecipes(ctx context.Context, db *gorm.DB, ids []uint) ([]models.Recipe, error) {
	var out []models.Recipe
	if len(ids) == 0 {
		return out, nil
	}
	err := withRecipeGraph(db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("id DESC").
		Find(&out).Error
	return out, err
}

// FindRecipeOwner loads only the id, author and image key of a recipe.
func FindRecipeOwner(ctx context.Context, db *gorm.DB, id uint) (*models.Recipe, error) {
	var r models.Recipe
	if err := db.WithContext(ctx).Select("id", "author_id", "image").First(&r, id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func RecipeExists(ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// InsertRecipe creates the recipe row only, associations are written separately.
func InsertRecipe(ctx context.Context, db *gorm.DB, r *models.Recipe) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(r).Error
}

func UpdateRecipeFields(ctx context.Context, db *gorm.DB, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return db.WithContext(ctx).Model(&models.Recipe{ID: id}).Updates(fields).Error
}

// ReplaceRecipeIngredients deletes every ingredient row of the recipe and inserts rows.
func ReplaceRecipeIngredients(ctx context.Context, db *gorm.DB, recipeID uint, rows []models.RecipeIngredient) error {
	tx := db.WithContext(ctx)
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].ID = 0
		rows[i].RecipeID = recipeID
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

// ReplaceRecipeTags makes tags the exact tag set of the recipe.
func ReplaceRecipeTags(ctx context.Context, db *gorm.DB, recipeID uint, tags []models.Tag) error {
	r := models.Recipe{ID: recipeID}
	return db.WithContext(ctx).Model(&r).Association("Tags").Replace(tags)
}

// DeleteRecipe removes the recipe and every row that depends on it.
func DeleteRecipe(ctx context.Context, db *gorm.DB, id uint) (int64, error) {
	tx := db.WithContext(ctx)
	if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
		return 0, err
	}
	for _, dep := range []any{&models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCartItem{}} {
		if err := tx.Where("recipe_id = ?", id).Delete(dep).Error; err != nil {
			return 0, err
		}
	}
	res := tx.Delete(&models.Recipe{}, id)
	return res.RowsAffected, res.Error
}

// RecipeFilter narrows recipes on stored columns. Nil or empty fields apply no predicate.
type RecipeFilter struct {
	AuthorID *uint
	TagSlugs []string
}

// CandidateRecipeIDs returns matching recipe ids in default order, newest first.
func CandidateRecipeIDs(ctx context.Context, db *gorm.DB, f RecipeFilter) ([]uint, error) {
	q := db.WithContext(ctx).Model(&models.Recipe{})
	if f.AuthorID != nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		q = q.Where(`EXISTS (
			SELECT 1 FROM recipe_tags rt
			JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = recipes.id AND t.slug IN ?)`, f.TagSlugs)
	}

	var ids []uint
	if err := q.Order("id DESC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// RecipesByAuthors returns the newest recipes of each author, at most limit per
// author when limit > 0, grouped by author id and newest first.
func RecipesByAuthors(ctx context.Context, db *gorm.DB, authorIDs []uint, limit int) (map[uint][]models.Recipe, error) {
	out := make(map[uint][]models.Recipe, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}
	tx := db.WithContext(ctx)
	q := tx.Where("author_id IN ?", authorIDs)
	if limit > 0 {
		ranked := tx.Model(&models.Recipe{}).
			Select("id, ROW_NUMBER() OVER (PARTITION BY author_id ORDER BY id DESC) AS rn").
			Where("author_id IN ?", authorIDs)
		q = tx.Where("id IN (?)", tx.Table("(?) AS ranked", ranked).Select("id").Where("rn <= ?", limit))
	}
	var recipes []models.Recipe
	if err := q.Order("id DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	for _, r := range recipes {
		if r.AuthorID != nil {
			out[*r.AuthorID] = append(out[*r.AuthorID], r)
		}
	}
	return out, nil
}

// CountRecipesByAuthors returns the number of recipes per author id.
func CountRecipesByAuthors(ctx context.Context, db *gorm.DB, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.AuthorID] = r.Total
	}
	return counts, nil
}

// ShoppingLine is one aggregated ingredient of a shopping list.
type ShoppingLine struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

// ShoppingList sums ingredient amounts over every recipe in the user's cart.
func ShoppingList(ctx context.Context, db *gorm.DB, userID uint) ([]ShoppingLine, error) {
	var out []ShoppingLine
	err := db.WithContext(ctx).
		Table("shopping_cart_items AS c").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, SUM(ri.amount) AS amount").
		Joins("JOIN recipe_ingredients ri ON ri.recipe_id = c.recipe_id").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Where("c.user_id = ?", userID).
		Group("i.name, i.measurement_unit").
		Order("i.name ASC").
		Scan(&out).Error
	return out, err
}
