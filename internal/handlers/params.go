package handlers

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/petermazzocco/foodgram/internal/apperr"
	"github.com/petermazzocco/foodgram/internal/store"
)

// page is the response envelope of paginated listings.
type page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// maxOffset bounds page*limit so offsets never overflow.
const maxOffset = math.MaxInt32

type paging struct {
	Page  int
	Limit int
}

func (p paging) window() store.Window {
	return store.Window{Offset: (p.Page - 1) * p.Limit, Limit: p.Limit}
}

func (h *Handler) paging(r *http.Request) (paging, error) {
	p := paging{Page: 1, Limit: h.PageSize}
	if p.Limit <= 0 {
		p.Limit = 6
	}
	var err error
	if p.Page, err = positiveInt(r, "page", p.Page); err != nil {
		return paging{}, err
	}
	if p.Limit, err = positiveInt(r, "limit", p.Limit); err != nil {
		return paging{}, err
	}
	if p.Limit > maxOffset || p.Page-1 > (maxOffset-p.Limit)/p.Limit {
		return paging{}, apperr.Missing("page", "invalid page")
	}
	return p, nil
}

func newPage[T any](r *http.Request, p paging, total int64, results []T) page[T] {
	out := page[T]{Count: total, Results: results}
	if out.Results == nil {
		out.Results = []T{}
	}
	if int64(p.Page*p.Limit) < total {
		next := pageURL(r, p.Page+1)
		out.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(r, p.Page-1)
		out.Previous = &prev
	}
	return out
}

func pageURL(r *http.Request, n int) string {
	u := url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path}
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}
	q := r.URL.Query()
	if n <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func positiveInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperr.Invalid(name, "invalid_number", name+" must be a positive integer")
	}
	return n, nil
}

// flag reads a 0/1/true/false query parameter, absent meaning false.
func flag(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperr.Invalid(name, "invalid_bool", name+" must be 0 or 1")
	}
	return b, nil
}

func idParam(r *http.Request, name string) (uint, error) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 0)
	if err != nil || n == 0 {
		return 0, apperr.Missing(name, "not found")
	}
	return uint(n), nil
}

// recipesLimit reads recipes_limit, where absent means every recipe.
func recipesLimit(r *http.Request) (int, error) {
	return positiveInt(r, "recipes_limit", 0)
}
