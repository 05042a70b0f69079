package accounts

import (
	"context"
	"testing"

	"github.com/petermazzocco/foodgram/internal/apperr"
	"github.com/petermazzocco/foodgram/internal/identity"
	"github.com/petermazzocco/foodgram/internal/resolver"
	"github.com/petermazzocco/foodgram/internal/store"
	"github.com/petermazzocco/foodgram/internal/storetest"
	"github.com/petermazzocco/foodgram/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) *Service {
	db := storetest.Open(t)
	svc := New(db, resolver.New(db))
	svc.cost = bcrypt.MinCost
	return svc
}

func validInput() RegisterInput {
	return RegisterInput{
		Email:     "Julia@Example.com",
		Username:  "julia.child",
		FirstName: "Julia",
		LastName:  "Child",
		Password:  "bon-appetit",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, validInput())
	require.NoError(t, err)
	require.Equal(t, "julia@example.com", u.Email)
	require.False(t, u.IsSubscribed)

	token, err := svc.Login(ctx, "julia@example.com", "bon-appetit")
	require.NoError(t, err)
	require.Len(t, token, 64)

	who, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, u.ID, who.UserID)
	require.Equal(t, models.RoleUser, who.Role)

	var stored models.Token
	require.NoError(t, svc.db.First(&stored).Error)
	require.NotEqual(t, token, stored.Digest, "only the digest is stored")

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.Authenticate(ctx, token)
	require.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.Login(ctx, "julia@example.com", "wrong-password")
	require.Equal(t, "invalid_credentials", apperr.RuleOf(err))
	_, err = svc.Login(ctx, "nobody@example.com", "bon-appetit")
	require.Equal(t, "invalid_credentials", apperr.RuleOf(err))
}

func TestRegisterValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	cases := map[string]struct {
		mutate func(in *RegisterInput)
		rule   string
	}{
		"bad email":      {func(in *RegisterInput) { in.Email = "not-an-email" }, "invalid_email"},
		"bad username":   {func(in *RegisterInput) { in.Username = "with space" }, "invalid_username"},
		"reserved name":  {func(in *RegisterInput) { in.Username = "me" }, "reserved_username"},
		"no first name":  {func(in *RegisterInput) { in.FirstName = " " }, "required"},
		"short password": {func(in *RegisterInput) { in.Password = "short" }, "password_too_short"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := svc.Register(ctx, in)
			require.Equal(t, apperr.Validation, apperr.KindOf(err))
			require.Equal(t, tc.rule, apperr.RuleOf(err))
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Username = "someone_else"
	_, err = svc.Register(ctx, in)
	require.Equal(t, "email_taken", apperr.RuleOf(err))

	in = validInput()
	in.Email = "other@example.com"
	_, err = svc.Register(ctx, in)
	require.Equal(t, "username_taken", apperr.RuleOf(err))
}

func TestSetPassword(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, validInput())
	require.NoError(t, err)
	me := identity.User(u.ID)

	err = svc.SetPassword(ctx, me, "wrong", "a-new-password")
	require.Equal(t, "invalid_password", apperr.RuleOf(err))

	err = svc.SetPassword(ctx, me, "bon-appetit", "tiny")
	require.Equal(t, "password_too_short", apperr.RuleOf(err))

	require.NoError(t, svc.SetPassword(ctx, me, "bon-appetit", "a-new-password"))
	_, err = svc.Login(ctx, u.Email, "a-new-password")
	require.NoError(t, err)
}

func TestLoginExternalCreatesOnce(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	t1, err := svc.LoginExternal(ctx, "Chef@Example.com", "Gordon", "Ramsay")
	require.NoError(t, err)
	t2, err := svc.LoginExternal(ctx, "chef@example.com", "Gordon", "Ramsay")
	require.NoError(t, err)
	require.NotEqual(t, t1, t2)

	a, err := svc.Authenticate(ctx, t1)
	require.NoError(t, err)
	b, err := svc.Authenticate(ctx, t2)
	require.NoError(t, err)
	require.Equal(t, a.UserID, b.UserID)

	// external accounts have no password
	_, err = svc.Login(ctx, "chef@example.com", "")
	require.Equal(t, "invalid_credentials", apperr.RuleOf(err))
}

func TestProfiles(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	me := storetest.User(t, svc.db)
	chef := storetest.User(t, svc.db)
	storetest.Subscribe(t, svc.db, me, chef)

	got, err := svc.GetUser(ctx, identity.User(me.ID), chef.ID)
	require.NoError(t, err)
	require.True(t, got.IsSubscribed)

	got, err = svc.GetUser(ctx, identity.Anonymous(), chef.ID)
	require.NoError(t, err)
	require.False(t, got.IsSubscribed)

	_, err = svc.GetUser(ctx, identity.Anonymous(), 9999)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))

	self, err := svc.Me(ctx, identity.User(me.ID))
	require.NoError(t, err)
	require.Equal(t, me.Username, self.Username)

	_, err = svc.Me(ctx, identity.Anonymous())
	require.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))

	users, total, err := svc.ListUsers(ctx, identity.User(me.ID), store.Window{Limit: 1})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, users, 1)
	require.Equal(t, me.ID, users[0].ID)
}
