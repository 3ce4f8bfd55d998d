// Package interceptors propagates correlation ids from inbound requests to
// outbound storefront calls.
package interceptors

import (
	"context"

	"github.com/jcmexdev/storefront-checkout/internal/pkg/interceptors/constants"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, constants.ContextKeyRequestID, id)
}

func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, constants.ContextKeyIdempotencyKey, key)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(constants.ContextKeyRequestID).(string)
	return id
}

func IdempotencyKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(constants.ContextKeyIdempotencyKey).(string)
	return key
}
