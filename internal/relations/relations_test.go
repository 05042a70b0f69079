package relations

import (
	"context"
	"testing"

	"github.com/petermazzocco/foodgram/internal/apperr"
	"github.com/petermazzocco/foodgram/internal/identity"
	"github.com/petermazzocco/foodgram/internal/store"
	"github.com/petermazzocco/foodgram/internal/storetest"
	"github.com/stretchr/testify/require"
)

func TestFavorites(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()
	svc := New(db)
	me := identity.User(storetest.User(t, db).ID)
	r := storetest.Recipe(t, db, storetest.User(t, db), nil)

	short, err := svc.AddFavorite(ctx, me, r.ID)
	require.NoError(t, err)
	require.Equal(t, r.ID, short.ID)
	require.Equal(t, r.Title, short.Name)

	_, err = svc.AddFavorite(ctx, me, r.ID)
	require.Equal(t, "already_favorited", apperr.RuleOf(err))

	require.NoError(t, svc.RemoveFavorite(ctx, me, r.ID))
	err = svc.RemoveFavorite(ctx, me, r.ID)
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))
	require.Equal(t, "not_favorited", apperr.RuleOf(err))

	_, err = svc.AddFavorite(ctx, me, 9999)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
	_, err = svc.AddFavorite(ctx, identity.Anonymous(), r.ID)
	require.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
}

func TestCartIsIndependentOfFavorites(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()
	svc := New(db)
	me := identity.User(storetest.User(t, db).ID)
	r := storetest.Recipe(t, db, storetest.User(t, db), nil)

	_, err := svc.AddFavorite(ctx, me, r.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, me, r.ID)
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, me, r.ID)
	require.Equal(t, "already_in_cart", apperr.RuleOf(err))

	require.NoError(t, svc.RemoveFromCart(ctx, me, r.ID))
	require.Equal(t, "not_in_cart", apperr.RuleOf(svc.RemoveFromCart(ctx, me, r.ID)))
	require.NoError(t, svc.RemoveFavorite(ctx, me, r.ID), "favorite survives cart removal")
}

func TestShoppingList(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()
	svc := New(db)
	user := storetest.User(t, db)
	sugar := storetest.Ingredient(t, db, "sugar", "g")

	r1 := storetest.Recipe(t, db, user, nil, storetest.Part{Ingredient: sugar, Amount: 10})
	r2 := storetest.Recipe(t, db, user, nil, storetest.Part{Ingredient: sugar, Amount: 15})
	storetest.CartItem(t, db, user, r1)
	storetest.CartItem(t, db, user, r2)

	lines, err := svc.ShoppingList(ctx, identity.User(user.ID))
	require.NoError(t, err)
	require.Equal(t, []store.ShoppingLine{{Name: "sugar", MeasurementUnit: "g", Amount: 25}}, lines)

	body := string(RenderShoppingList(lines))
	require.Contains(t, body, "• sugar (g): 25")

	require.Contains(t, string(RenderShoppingList(nil)), "empty")

	_, err = svc.ShoppingList(ctx, identity.Anonymous())
	require.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
}
