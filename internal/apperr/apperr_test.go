package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("create recipe: %w", Invalid("cooking_time", "cooking_time_min", "must be at least 1"))
	require.Equal(t, Validation, KindOf(err))
	require.Equal(t, "cooking_time_min", RuleOf(err))
	require.True(t, Is(err, Validation))

	require.Equal(t, Internal, KindOf(errors.New("boom")))
	require.Empty(t, RuleOf(errors.New("boom")))
	require.False(t, Is(nil, Internal))
}

func TestErrorMessage(t *testing.T) {
	require.Equal(t, "conflict: author: already subscribed",
		Conflicting("author", "already_subscribed", "already subscribed").Error())

	cause := errors.New("connection refused")
	err := Wrap(cause, "load recipe")
	require.ErrorIs(t, err, cause)
	require.Equal(t, "internal: load recipe: connection refused", err.Error())
}
