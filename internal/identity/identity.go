// Package identity describes who is calling a core operation.
package identity

import (
	"context"

	"github.com/petermazzocco/foodgram/models"
)

// Requester is passed explicitly into every core operation. The zero value is anonymous.
type Requester struct {
	UserID uint
	Role   string
}

func Anonymous() Requester { return Requester{} }

func User(id uint) Requester { return Requester{UserID: id, Role: models.RoleUser} }

func Admin(id uint) Requester { return Requester{UserID: id, Role: models.RoleAdmin} }

func (r Requester) IsAuthenticated() bool { return r.UserID != 0 }

func (r Requester) IsAdmin() bool { return r.IsAuthenticated() && r.Role == models.RoleAdmin }

// CanModify reports whether the requester may change something owned by ownerID.
func (r Requester) CanModify(ownerID *uint) bool {
	if !r.IsAuthenticated() {
		return false
	}
	if r.IsAdmin() {
		return true
	}
	return ownerID != nil && *ownerID == r.UserID
}

type ctxKey struct{}

func NewContext(ctx context.Context, r Requester) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

// FromContext returns the requester stored by the auth middleware, anonymous when none is set.
func FromContext(ctx context.Context) Requester {
	r, _ := ctx.Value(ctxKey{}).(Requester)
	return r
}
