// Package storetest opens throwaway sqlite databases with the production schema for package tests.
package storetest

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/petermazzocco/foodgram/internal/store"
	"github.com/petermazzocco/foodgram/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// Open returns a migrated database backed by a file in the test's temp dir.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "foodgram.db")
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)

	cfg := store.Config()
	cfg.Logger = logger.Default.LogMode(logger.Silent)
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func next() int64 { return seq.Add(1) }

func User(t testing.TB, db *gorm.DB) *models.User {
	t.Helper()
	n := next()
	u := &models.User{
		Email:     fmt.Sprintf("cook%d@example.com", n),
		Username:  fmt.Sprintf("cook%d", n),
		FirstName: "Cook",
		LastName:  fmt.Sprintf("Number%d", n),
		Role:      models.RoleUser,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func Tag(t testing.TB, db *gorm.DB, slug string) *models.Tag {
	t.Helper()
	n := next()
	tag := &models.Tag{
		Name:  slug,
		Slug:  slug,
		Color: fmt.Sprintf("#%06X", n),
	}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func Ingredient(t testing.TB, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	i := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(i).Error)
	return i
}

// Part is an ingredient amount used to build fixture recipes.
type Part struct {
	Ingredient *models.Ingredient
	Amount     int
}

// Recipe inserts a recipe owned by author with the given tags and ingredient amounts.
func Recipe(t testing.TB, db *gorm.DB, author *models.User, tags []*models.Tag, parts ...Part) *models.Recipe {
	t.Helper()
	n := next()
	r := &models.Recipe{
		Title:       fmt.Sprintf("Recipe %d", n),
		Text:        "Mix and cook.",
		Image:       fmt.Sprintf("recipes/%d.jpg", n),
		CookingTime: 10,
	}
	if author != nil {
		r.AuthorID = &author.ID
	}
	for _, tag := range tags {
		r.Tags = append(r.Tags, *tag)
	}
	for _, p := range parts {
		r.IngredientList = append(r.IngredientList, models.RecipeIngredient{IngredientID: p.Ingredient.ID, Amount: p.Amount})
	}
	require.NoError(t, db.Omit("Author").Create(r).Error)
	return r
}

func Favorite(t testing.TB, db *gorm.DB, user *models.User, recipe *models.Recipe) {
	t.Helper()
	require.NoError(t, db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error)
}

func CartItem(t testing.TB, db *gorm.DB, user *models.User, recipe *models.Recipe) {
	t.Helper()
	require.NoError(t, db.Create(&models.ShoppingCartItem{UserID: user.ID, RecipeID: recipe.ID}).Error)
}

func Subscribe(t testing.TB, db *gorm.DB, subscriber, author *models.User) {
	t.Helper()
	require.NoError(t, db.Create(&models.Subscription{SubscriberID: subscriber.ID, AuthorID: author.ID}).Error)
}
