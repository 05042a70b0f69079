package store

import (
	"context"

	"github.com/petermazzocco/foodgram/models"
	"gorm.io/gorm"
)

func CreateToken(ctx context.Context, db *gorm.DB, t *models.Token) error {
	return db.WithContext(ctx).Create(t).Error
}

// FindTokenOwner returns the user an issued token digest belongs to.
func FindTokenOwner(ctx context.Context, db *gorm.DB, digest string) (*models.User, error) {
	var t models.Token
	if err := db.WithContext(ctx).Preload("User").Where("digest = ?", digest).First(&t).Error; err != nil {
		return nil, err
	}
	if t.User == nil {
		return nil, ErrNotFound
	}
	return t.User, nil
}

func DeleteToken(ctx context.Context, db *gorm.DB, digest string) (int64, error) {
	res := db.WithContext(ctx).Where("digest = ?", digest).Delete(&models.Token{})
	return res.RowsAffected, res.Error
}
