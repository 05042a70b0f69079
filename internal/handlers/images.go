package handlers

import (
	"context"
	"errors"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/petermazzocco/foodgram/internal/apperr"
	"github.com/petermazzocco/foodgram/internal/media"
	"github.com/petermazzocco/foodgram/internal/views"
)

// uploadImage stores an inline image and returns its object key.
func (h *Handler) uploadImage(ctx context.Context, ownerID uint, dataURI string) (string, error) {
	if dataURI == "" {
		return "", apperr.Invalid("image", "required", "image is required")
	}
	key, err := h.Images.Save(ctx, ownerID, dataURI)
	switch {
	case errors.Is(err, media.ErrNotDataURI), errors.Is(err, media.ErrNotAnImage), errors.Is(err, media.ErrEmptyPayload):
		return "", apperr.Invalid("image", "invalid_image", err.Error())
	case err != nil:
		return "", apperr.Wrap(err, "upload image")
	}
	return key, nil
}

// discardImage removes an image no recipe refers to anymore.
func (h *Handler) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.Images.Delete(context.WithoutCancel(ctx), key); err != nil {
		h.Logger.Warn().
			Err(err).
			Str("request_id", middleware.GetReqID(ctx)).
			Str("key", key).
			Msg("failed to delete unused image")
	}
}

func (h *Handler) recipeImages(recipes ...*views.Recipe) {
	for _, rc := range recipes {
		rc.Image = h.Images.URL(rc.Image)
	}
}
