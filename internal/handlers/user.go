package handlers

import (
	"net/http"

	"github.com/petermazzocco/foodgram/internal/accounts"
	"github.com/petermazzocco/foodgram/internal/auth"
	"github.com/petermazzocco/foodgram/internal/identity"
	"github.com/petermazzocco/foodgram/internal/views"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in accounts.RegisterInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.Accounts.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	token, err := h.Accounts.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"auth_token": token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Accounts.Logout(r.Context(), auth.TokenFrom(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, err := h.paging(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	users, total, err := h.Accounts.ListUsers(r.Context(), identity.FromContext(r.Context()), p.window())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(r, p, total, users))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.Accounts.GetUser(r.Context(), identity.FromContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Accounts.Me(r.Context(), identity.FromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type setPasswordRequest struct {
	NewPassword     string `json:"new_password"`
	CurrentPassword string `json:"current_password"`
}

func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var in setPasswordRequest
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	err := h.Accounts.SetPassword(r.Context(), identity.FromContext(r.Context()), in.CurrentPassword, in.NewPassword)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	p, err := h.paging(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit, err := recipesLimit(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	authors, total, err := h.Subscriptions.List(r.Context(), identity.FromContext(r.Context()), p.window(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for i := range authors {
		h.authorImages(&authors[i])
	}
	writeJSON(w, http.StatusOK, newPage(r, p, total, authors))
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit, err := recipesLimit(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	author, err := h.Subscriptions.Subscribe(r.Context(), identity.FromContext(r.Context()), id, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.authorImages(author)
	writeJSON(w, http.StatusCreated, author)
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Subscriptions.Unsubscribe(r.Context(), identity.FromContext(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) authorImages(a *views.Author) {
	for i := range a.Recipes {
		a.Recipes[i].Image = h.Images.URL(a.Recipes[i].Image)
	}
}

