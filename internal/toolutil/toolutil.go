// Package toolutil provides shared helper functions for go_brief MCP tools.
package toolutil

import (
	"context"

	"github.com/anatolykoptev/go_brief/internal/engine"
)

// ClampLimit returns def for n <= 0 and caps n at max.
func ClampLimit(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// Cached returns the value stored under key, or computes it with fn and
// stores it on success. A nil cache always computes.
func Cached[T any](ctx context.Context, c *engine.Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	if out, ok := engine.CacheLoadJSON[T](ctx, c, key); ok {
		return out, nil
	}
	out, err := fn(ctx)
	if err != nil {
		return out, err
	}
	engine.CacheStoreJSON(ctx, c, key, out)
	return out, nil
}
