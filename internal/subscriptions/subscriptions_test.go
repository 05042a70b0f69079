package subscriptions

import (
	"context"
	"sync"
	"testing"

	"github.com/petermazzocco/foodgram/internal/apperr"
	"github.com/petermazzocco/foodgram/internal/identity"
	"github.com/petermazzocco/foodgram/internal/store"
	"github.com/petermazzocco/foodgram/internal/storetest"
	"github.com/petermazzocco/foodgram/models"
	"github.com/stretchr/testify/require"
)

func TestSubscribe(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()
	svc := New(db)

	me := storetest.User(t, db)
	chef := storetest.User(t, db)
	storetest.Recipe(t, db, chef, nil)
	r2 := storetest.Recipe(t, db, chef, nil)
	r3 := storetest.Recipe(t, db, chef, nil)

	got, err := svc.Subscribe(ctx, identity.User(me.ID), chef.ID, 2)
	require.NoError(t, err)
	require.Equal(t, chef.ID, got.ID)
	require.True(t, got.IsSubscribed)
	require.EqualValues(t, 3, got.RecipesCount)
	require.Len(t, got.Recipes, 2)
	require.Equal(t, r3.ID, got.Recipes[0].ID)
	require.Equal(t, r2.ID, got.Recipes[1].ID)

	_, err = svc.Subscribe(ctx, identity.User(me.ID), chef.ID, 0)
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))
	require.Equal(t, "already_subscribed", apperr.RuleOf(err))
}

func TestSubscribeRejections(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()
	svc := New(db)
	me := storetest.User(t, db)

	_, err := svc.Subscribe(ctx, identity.User(me.ID), me.ID, 0)
	require.Equal(t, "self_subscription", apperr.RuleOf(err))

	_, err = svc.Subscribe(ctx, identity.User(me.ID), 9999, 0)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = svc.Subscribe(ctx, identity.Anonymous(), me.ID, 0)
	require.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))

	var n int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestConcurrentSubscribeCreatesOneRow(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()
	svc := New(db)
	me := storetest.User(t, db)
	chef := storetest.User(t, db)

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Subscribe(ctx, identity.User(me.ID), chef.ID, 0)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.Equal(t, "already_subscribed", apperr.RuleOf(err), "got %v", err)
	}
	require.Equal(t, 1, succeeded)

	var n int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestUnsubscribe(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()
	svc := New(db)
	me := storetest.User(t, db)
	chef := storetest.User(t, db)
	storetest.Subscribe(t, db, me, chef)

	require.NoError(t, svc.Unsubscribe(ctx, identity.User(me.ID), chef.ID))

	err := svc.Unsubscribe(ctx, identity.User(me.ID), chef.ID)
	require.Equal(t, "not_subscribed", apperr.RuleOf(err))

	err = svc.Unsubscribe(ctx, identity.User(me.ID), 9999)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestList(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()
	svc := New(db)
	me := storetest.User(t, db)
	a := storetest.User(t, db)
	b := storetest.User(t, db)
	storetest.Recipe(t, db, a, nil)
	storetest.Recipe(t, db, a, nil)
	storetest.Subscribe(t, db, me, a)
	storetest.Subscribe(t, db, me, b)

	got, total, err := svc.List(ctx, identity.User(me.ID), store.Window{Limit: 10}, 1)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, got, 2)
	require.Equal(t, a.ID, got[0].ID)
	require.EqualValues(t, 2, got[0].RecipesCount)
	require.Len(t, got[0].Recipes, 1)
	require.Zero(t, got[1].RecipesCount)
	require.NotNil(t, got[1].Recipes)
}
