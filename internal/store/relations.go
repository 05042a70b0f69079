package store

import (
	"context"

	"github.com/petermazzocco/foodgram/models"
	"gorm.io/gorm"
)

// Kinds reported by RelationMarks, matching the literals in its statement.
const (
	MarkFavorite = "favorite"
	MarkCart     = "cart"
)

// RelationMark says that a recipe is in one of a user's relation tables.
type RelationMark struct {
	RecipeID uint
	Kind     string
}

// RelationMarks reads favorite and cart rows for the user and recipes in a single statement.
func RelationMarks(ctx context.Context, db *gorm.DB, userID uint, recipeIDs []uint) ([]RelationMark, error) {
	var out []RelationMark
	if len(recipeIDs) == 0 {
		return out, nil
	}
	err := db.WithContext(ctx).Raw(`
		SELECT recipe_id, 'favorite' AS kind FROM favorites WHERE user_id = ? AND recipe_id IN ?
		UNION ALL
		SELECT recipe_id, 'cart' AS kind FROM shopping_cart_items WHERE user_id = ? AND recipe_id IN ?`,
		userID, recipeIDs,
		userID, recipeIDs,
	).Scan(&out).Error
	return out, err
}

func InsertFavorite(ctx context.Context, db *gorm.DB, userID, recipeID uint) error {
	return db.WithContext(ctx).Create(&models.Favorite{UserID: userID, RecipeID: recipeID}).Error
}

func DeleteFavorite(ctx context.Context, db *gorm.DB, userID, recipeID uint) (int64, error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	return res.RowsAffected, res.Error
}

func InsertCartItem(ctx context.Context, db *gorm.DB, userID, recipeID uint) error {
	return db.WithContext(ctx).Create(&models.ShoppingCartItem{UserID: userID, RecipeID: recipeID}).Error
}

func DeleteCartItem(ctx context.Context, db *gorm.DB, userID, recipeID uint) (int64, error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.ShoppingCartItem{})
	return res.RowsAffected, res.Error
}

// SubscribedAuthorIDs returns which of authorIDs the subscriber follows.
func SubscribedAuthorIDs(ctx context.Context, db *gorm.DB, subscriberID uint, authorIDs []uint) ([]uint, error) {
	var out []uint
	if len(authorIDs) == 0 {
		return out, nil
	}
	err := db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ? AND author_id IN ?", subscriberID, authorIDs).
		Pluck("author_id", &out).Error
	return out, err
}

func SubscriptionExists(ctx context.Context, db *gorm.DB, subscriberID, authorID uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Count(&n).Error
	return n > 0, err
}

func InsertSubscription(ctx context.Context, db *gorm.DB, subscriberID, authorID uint) error {
	return db.WithContext(ctx).Create(&models.Subscription{SubscriberID: subscriberID, AuthorID: authorID}).Error
}

func DeleteSubscription(ctx context.Context, db *gorm.DB, subscriberID, authorID uint) (int64, error) {
	res := db.WithContext(ctx).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Delete(&models.Subscription{})
	return res.RowsAffected, res.Error
}

// SubscribedAuthors pages through the authors the subscriber follows, ordered by user id.
func SubscribedAuthors(ctx context.Context, db *gorm.DB, subscriberID uint, w Window) ([]models.User, int64, error) {
	base := func() *gorm.DB {
		return db.WithContext(ctx).Model(&models.User{}).
			Joins("JOIN subscriptions s ON s.author_id = users.id").
			Where("s.subscriber_id = ?", subscriberID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	if err := w.apply(base().Order("users.id ASC")).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
