package store

import (
	"context"
	"strings"

	"github.com/petermazzocco/foodgram/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const importBatchSize = 500

// SearchIngredients returns ingredients whose name contains fragment, ignoring case.
// Names starting with the fragment come first, then the rest, each group sorted by name.
func SearchIngredients(ctx context.Context, db *gorm.DB, fragment string) ([]models.Ingredient, error) {
	q := db.WithContext(ctx).Model(&models.Ingredient{})

	fragment = strings.ToLower(strings.TrimSpace(fragment))
	if fragment == "" {
		q = q.Order("name ASC").Order("id ASC")
	} else {
		esc := escapeLike(fragment)
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+esc+"%").
			Order(clause.OrderBy{
				Expression: clause.Expr{
					SQL:                `CASE WHEN LOWER(name) LIKE ? ESCAPE '\' THEN 0 ELSE 1 END, name ASC, id ASC`,
					Vars:               []any{esc + "%"},
					WithoutParentheses: true,
				},
			})
	}

	var out []models.Ingredient
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func FindIngredient(ctx context.Context, db *gorm.DB, id uint) (*models.Ingredient, error) {
	var i models.Ingredient
	if err := db.WithContext(ctx).First(&i, id).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

// IngredientsByIDs returns the ingredients among ids that exist.
func IngredientsByIDs(ctx context.Context, db *gorm.DB, ids []uint) ([]models.Ingredient, error) {
	var out []models.Ingredient
	if len(ids) == 0 {
		return out, nil
	}
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// UpsertIngredients inserts the ingredients, skipping any (name, unit) pair already present.
func UpsertIngredients(ctx context.Context, db *gorm.DB, items []models.Ingredient) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&items, importBatchSize)
	return res.RowsAffected, res.Error
}

func ListTags(ctx context.Context, db *gorm.DB) ([]models.Tag, error) {
	var out []models.Tag
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func FindTag(ctx context.Context, db *gorm.DB, id uint) (*models.Tag, error) {
	var t models.Tag
	if err := db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// TagsByIDs returns the tags among ids that exist.
func TagsByIDs(ctx context.Context, db *gorm.DB, ids []uint) ([]models.Tag, error) {
	var out []models.Tag
	if len(ids) == 0 {
		return out, nil
	}
	err := db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&out).Error
	return out, err
}

// UpsertTags inserts tags, skipping any whose name, color or slug is already taken.
func UpsertTags(ctx context.Context, db *gorm.DB, tags []models.Tag) (int64, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&tags, importBatchSize)
	return res.RowsAffected, res.Error
}
