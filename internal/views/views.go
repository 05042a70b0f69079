// Package views holds the presentation-ready records handed to the HTTP layer.
package views

import "github.com/petermazzocco/foodgram/models"

type User struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type Tag struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type Ingredient struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// IngredientLine is one ingredient of a recipe with its amount.
type IngredientLine struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type Recipe struct {
	ID               uint             `json:"id"`
	Tags             []Tag            `json:"tags"`
	Author           *User            `json:"author"`
	Ingredients      []IngredientLine `json:"ingredients"`
	IsFavorited      bool             `json:"is_favorited"`
	IsInShoppingCart bool             `json:"is_in_shopping_cart"`
	Name             string           `json:"name"`
	Image            string           `json:"image"`
	Text             string           `json:"text"`
	CookingTime      int              `json:"cooking_time"`
}

// RecipeShort is the compact form used in favorites, cart and subscription listings.
type RecipeShort struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// Author is a followed user with a sample of their recipes.
type Author struct {
	User
	Recipes      []RecipeShort `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}

func NewUser(u models.User, subscribed bool) User {
	return User{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func NewTag(t models.Tag) Tag {
	return Tag{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func NewTags(tags []models.Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, NewTag(t))
	}
	return out
}

func NewIngredient(i models.Ingredient) Ingredient {
	return Ingredient{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func NewIngredients(items []models.Ingredient) []Ingredient {
	out := make([]Ingredient, 0, len(items))
	for _, i := range items {
		out = append(out, NewIngredient(i))
	}
	return out
}

func NewRecipeShort(r models.Recipe) RecipeShort {
	return RecipeShort{ID: r.ID, Name: r.Title, Image: r.Image, CookingTime: r.CookingTime}
}

// NewRecipe builds the full view. The recipe must be loaded with its author, tags and ingredients.
// Author is nil when the author account was deleted.
func NewRecipe(r models.Recipe, author *User, favorited, inCart bool) Recipe {
	lines := make([]IngredientLine, 0, len(r.IngredientList))
	for _, ri := range r.IngredientList {
		line := IngredientLine{ID: ri.IngredientID, Amount: ri.Amount}
		if ri.Ingredient != nil {
			line.Name = ri.Ingredient.Name
			line.MeasurementUnit = ri.Ingredient.MeasurementUnit
		}
		lines = append(lines, line)
	}
	return Recipe{
		ID:               r.ID,
		Tags:             NewTags(r.Tags),
		Author:           author,
		Ingredients:      lines,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             r.Title,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}
