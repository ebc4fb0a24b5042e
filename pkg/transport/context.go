package transport

import (
	"context"

	"github.com/google/uuid"
)

type idempotencyKey struct{}

// WithIdempotencyKey returns a context whose requests carry key in the
// X-Idempotency-Key header. A keyed POST becomes eligible for retry.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, idempotencyKey{}, key)
}

// IdempotencyKeyFromContext returns the key set by WithIdempotencyKey.
func IdempotencyKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKey{}).(string)
	return key
}

// NewIdempotencyKey returns a random UUIDv4 key.
func NewIdempotencyKey() string {
	return uuid.NewString()
}
