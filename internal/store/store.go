// Package store holds the entity store access functions. Every function takes the *gorm.DB
// to run against, so the same code works on the root handle and inside a transaction.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/petermazzocco/foodgram/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a single-row lookup matches nothing.
var ErrNotFound = gorm.ErrRecordNotFound

// Open connects to Postgres. Constraint violations come back as gorm's translated errors.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Token{},
		&models.Ingredient{},
		&models.Tag{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartItem{},
		&models.Subscription{},
	); err != nil {
		return fmt.Errorf("auto migrate models: %w", err)
	}
	return nil
}

// IsDuplicate reports whether err is a uniqueness violation.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLSTATE 23505")
}

// IsForeignKey reports whether err is a foreign key violation.
func IsForeignKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") || strings.Contains(msg, "SQLSTATE 23503")
}

// Window bounds a page of results. A non-positive Limit means no limit.
type Window struct {
	Offset int
	Limit  int
}

func (w Window) apply(db *gorm.DB) *gorm.DB {
	if w.Offset > 0 {
		db = db.Offset(w.Offset)
	}
	if w.Limit > 0 {
		db = db.Limit(w.Limit)
	}
	return db
}

// escapeLike escapes LIKE wildcards so user input only matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
