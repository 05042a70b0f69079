package store_test

import (
	"context"
	"testing"

	"github.com/petermazzocco/foodgram/internal/store"
	"github.com/petermazzocco/foodgram/internal/storetest"
	"github.com/petermazzocco/foodgram/models"
	"github.com/stretchr/testify/require"
)

func TestSearchIngredientsPrefixFirst(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()

	storetest.Ingredient(t, db, "sugar", "g")
	storetest.Ingredient(t, db, "brown sugar", "g")
	storetest.Ingredient(t, db, "salt", "g")
	storetest.Ingredient(t, db, "sugar syrup", "ml")

	got, err := store.SearchIngredients(ctx, db, "SUG")
	require.NoError(t, err)
	names := make([]string, 0, len(got))
	for _, i := range got {
		names = append(names, i.Name)
	}
	require.Equal(t, []string{"sugar", "sugar syrup", "brown sugar"}, names)

	all, err := store.SearchIngredients(ctx, db, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, "brown sugar", all[0].Name)
}

func TestSearchIngredientsEscapesWildcards(t *testing.T) {
	db := storetest.Open(t)
	storetest.Ingredient(t, db, "flour", "g")

	got, err := store.SearchIngredients(context.Background(), db, "%")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestIngredientUniqueness(t *testing.T) {
	db := storetest.Open(t)
	storetest.Ingredient(t, db, "milk", "ml")

	err := db.Create(&models.Ingredient{Name: "milk", MeasurementUnit: "ml"}).Error
	require.True(t, store.IsDuplicate(err), "got %v", err)

	n, err := store.UpsertIngredients(context.Background(), db, []models.Ingredient{
		{Name: "milk", MeasurementUnit: "ml"},
		{Name: "milk", MeasurementUnit: "l"},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestCandidateRecipeIDs(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()

	alice := storetest.User(t, db)
	bob := storetest.User(t, db)
	breakfast := storetest.Tag(t, db, "breakfast")
	dinner := storetest.Tag(t, db, "dinner")

	r1 := storetest.Recipe(t, db, alice, []*models.Tag{breakfast})
	r2 := storetest.Recipe(t, db, bob, []*models.Tag{breakfast, dinner})
	r3 := storetest.Recipe(t, db, alice, []*models.Tag{dinner})

	ids, err := store.CandidateRecipeIDs(ctx, db, store.RecipeFilter{})
	require.NoError(t, err)
	require.Equal(t, []uint{r3.ID, r2.ID, r1.ID}, ids)

	ids, err = store.CandidateRecipeIDs(ctx, db, store.RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}})
	require.NoError(t, err)
	require.Equal(t, []uint{r3.ID, r2.ID, r1.ID}, ids, "a recipe carrying both tags appears once")

	ids, err = store.CandidateRecipeIDs(ctx, db, store.RecipeFilter{AuthorID: &alice.ID, TagSlugs: []string{"breakfast"}})
	require.NoError(t, err)
	require.Equal(t, []uint{r1.ID}, ids)
}

func TestRelationMarks(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()

	u := storetest.User(t, db)
	other := storetest.User(t, db)
	r1 := storetest.Recipe(t, db, other, nil)
	r2 := storetest.Recipe(t, db, other, nil)
	r3 := storetest.Recipe(t, db, other, nil)

	storetest.Favorite(t, db, u, r1)
	storetest.CartItem(t, db, u, r1)
	storetest.CartItem(t, db, u, r2)
	storetest.Favorite(t, db, other, r3)

	marks, err := store.RelationMarks(ctx, db, u.ID, []uint{r1.ID, r2.ID, r3.ID})
	require.NoError(t, err)
	require.ElementsMatch(t, []store.RelationMark{
		{RecipeID: r1.ID, Kind: store.MarkFavorite},
		{RecipeID: r1.ID, Kind: store.MarkCart},
		{RecipeID: r2.ID, Kind: store.MarkCart},
	}, marks)
}

func TestRelationUniqueness(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()

	u := storetest.User(t, db)
	r := storetest.Recipe(t, db, u, nil)

	require.NoError(t, store.InsertFavorite(ctx, db, u.ID, r.ID))
	require.True(t, store.IsDuplicate(store.InsertFavorite(ctx, db, u.ID, r.ID)))
	require.NoError(t, store.InsertCartItem(ctx, db, u.ID, r.ID), "cart is independent of favorites")

	n, err := store.DeleteFavorite(ctx, db, u.ID, r.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	n, err = store.DeleteFavorite(ctx, db, u.ID, r.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

func TestSubscriptionConstraints(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()

	a := storetest.User(t, db)
	b := storetest.User(t, db)

	require.NoError(t, store.InsertSubscription(ctx, db, a.ID, b.ID))
	require.True(t, store.IsDuplicate(store.InsertSubscription(ctx, db, a.ID, b.ID)))
	require.Error(t, store.InsertSubscription(ctx, db, a.ID, a.ID), "self-subscription is rejected by the store")

	ids, err := store.SubscribedAuthorIDs(ctx, db, a.ID, []uint{a.ID, b.ID})
	require.NoError(t, err)
	require.Equal(t, []uint{b.ID}, ids)
}

func TestShoppingListAggregates(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()

	u := storetest.User(t, db)
	flour := storetest.Ingredient(t, db, "flour", "g")
	eggs := storetest.Ingredient(t, db, "eggs", "pcs")

	r1 := storetest.Recipe(t, db, u, nil, storetest.Part{Ingredient: flour, Amount: 200}, storetest.Part{Ingredient: eggs, Amount: 2})
	r2 := storetest.Recipe(t, db, u, nil, storetest.Part{Ingredient: flour, Amount: 50})
	storetest.Recipe(t, db, u, nil, storetest.Part{Ingredient: flour, Amount: 999})

	storetest.CartItem(t, db, u, r1)
	storetest.CartItem(t, db, u, r2)

	lines, err := store.ShoppingList(ctx, db, u.ID)
	require.NoError(t, err)
	require.Equal(t, []store.ShoppingLine{
		{Name: "eggs", MeasurementUnit: "pcs", Amount: 2},
		{Name: "flour", MeasurementUnit: "g", Amount: 250},
	}, lines)
}

func TestDeleteRecipeCascades(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()

	u := storetest.User(t, db)
	tag := storetest.Tag(t, db, "lunch")
	salt := storetest.Ingredient(t, db, "salt", "g")
	r := storetest.Recipe(t, db, u, []*models.Tag{tag}, storetest.Part{Ingredient: salt, Amount: 1})
	storetest.Favorite(t, db, u, r)
	storetest.CartItem(t, db, u, r)

	n, err := store.DeleteRecipe(ctx, db, r.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	for _, m := range []any{&models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCartItem{}} {
		var count int64
		require.NoError(t, db.Model(m).Count(&count).Error)
		require.Zero(t, count)
	}
	var joins int64
	require.NoError(t, db.Table("recipe_tags").Count(&joins).Error)
	require.Zero(t, joins)

	_, err = store.FindTag(ctx, db, tag.ID)
	require.NoError(t, err, "tags survive recipe deletion")
}

func TestDeleteAuthorKeepsRecipes(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()

	u := storetest.User(t, db)
	r := storetest.Recipe(t, db, u, nil)

	require.NoError(t, db.Delete(&models.User{}, u.ID).Error)

	got, err := store.FindRecipe(ctx, db, r.ID)
	require.NoError(t, err)
	require.Nil(t, got.AuthorID)
	require.Nil(t, got.Author)
}

func TestSubscribedAuthorsPaging(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()

	me := storetest.User(t, db)
	a1 := storetest.User(t, db)
	a2 := storetest.User(t, db)
	a3 := storetest.User(t, db)
	storetest.Subscribe(t, db, me, a3)
	storetest.Subscribe(t, db, me, a1)
	storetest.Subscribe(t, db, me, a2)

	users, total, err := store.SubscribedAuthors(ctx, db, me.ID, store.Window{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, users, 1)
	require.Equal(t, a2.ID, users[0].ID)
}

func TestRecipesByAuthorsLimitsPerAuthor(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()

	a1 := storetest.User(t, db)
	a2 := storetest.User(t, db)
	lonely := storetest.User(t, db)
	tag := storetest.Tag(t, db, "soup")
	r1 := storetest.Recipe(t, db, a1, []*models.Tag{tag})
	r2 := storetest.Recipe(t, db, a2, []*models.Tag{tag})
	r3 := storetest.Recipe(t, db, a1, []*models.Tag{tag})
	r4 := storetest.Recipe(t, db, a1, []*models.Tag{tag})

	got, err := store.RecipesByAuthors(ctx, db, []uint{a1.ID, a2.ID, lonely.ID}, 2)
	require.NoError(t, err)
	require.Len(t, got[a1.ID], 2)
	require.Equal(t, r4.ID, got[a1.ID][0].ID)
	require.Equal(t, r3.ID, got[a1.ID][1].ID)
	require.Len(t, got[a2.ID], 1)
	require.Equal(t, r2.ID, got[a2.ID][0].ID)
	require.Empty(t, got[lonely.ID])

	all, err := store.RecipesByAuthors(ctx, db, []uint{a1.ID}, 0)
	require.NoError(t, err)
	require.Len(t, all[a1.ID], 3)
	require.Equal(t, r1.ID, all[a1.ID][2].ID)
}
