package logging

import (
	"context"

	"github.com/petermazzocco/foodgram/internal/identity"
)

type captureKey struct{}

func withCapture(ctx context.Context, dst *identity.Requester) context.Context {
	return context.WithValue(ctx, captureKey{}, dst)
}

// Capture records the resolved requester for the request log line.
// The auth middleware calls it once the bearer token has been checked.
func Capture(ctx context.Context, r identity.Requester) {
	if dst, ok := ctx.Value(captureKey{}).(*identity.Requester); ok {
		*dst = r
	}
}
