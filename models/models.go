package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint `gorm:"primarykey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Email        string `gorm:"size:254;not null;uniqueIndex"`
	Username     string `gorm:"size:150;not null;uniqueIndex"`
	FirstName    string `gorm:"size:150;not null"`
	LastName     string `gorm:"size:150;not null"`
	PasswordHash string `json:"-" gorm:"size:255"`
	Role         string `gorm:"size:16;not null;default:user"`
}

// Token stores the sha256 digest of an issued bearer token, never the token itself.
type Token struct {
	Digest    string `gorm:"primarykey;size:64"`
	UserID    uint   `gorm:"not null;index"`
	User      *User  `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time
}

type Ingredient struct {
	ID              uint   `gorm:"primarykey"`
	Name            string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit"`
	MeasurementUnit string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit"`
}

type Tag struct {
	ID    uint   `gorm:"primarykey"`
	Name  string `gorm:"size:200;not null;uniqueIndex"`
	Color string `gorm:"size:7;not null;uniqueIndex"`
	Slug  string `gorm:"size:200;not null;uniqueIndex"`
}

type Recipe struct {
	ID             uint `gorm:"primarykey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	AuthorID       *uint              `gorm:"index"`
	Author         *User              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Title          string             `gorm:"size:200;not null"`
	Text           string             `gorm:"not null"`
	Image          string             `gorm:"size:512;not null"`
	CookingTime    int                `gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1"`
	Tags           []Tag              `gorm:"many2many:recipe_tags;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	IngredientList []RecipeIngredient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

type RecipeIngredient struct {
	ID           uint        `gorm:"primarykey"`
	RecipeID     uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	Ingredient   *Ingredient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Amount       int         `gorm:"not null;check:chk_recipe_ingredients_amount,amount >= 1"`
}

type Favorite struct {
	ID        uint    `gorm:"primarykey"`
	UserID    uint    `gorm:"not null;uniqueIndex:idx_favorite_user_recipe"`
	User      *User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	RecipeID  uint    `gorm:"not null;uniqueIndex:idx_favorite_user_recipe"`
	Recipe    *Recipe `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time
}

type ShoppingCartItem struct {
	ID        uint    `gorm:"primarykey"`
	UserID    uint    `gorm:"not null;uniqueIndex:idx_cart_user_recipe"`
	User      *User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	RecipeID  uint    `gorm:"not null;uniqueIndex:idx_cart_user_recipe"`
	Recipe    *Recipe `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time
}

type Subscription struct {
	ID           uint  `gorm:"primarykey"`
	SubscriberID uint  `gorm:"not null;uniqueIndex:idx_subscription_pair;check:chk_subscriptions_self,subscriber_id <> author_id"`
	Subscriber   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AuthorID     uint  `gorm:"not null;uniqueIndex:idx_subscription_pair;index"`
	Author       *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt    time.Time
}
