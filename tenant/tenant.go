// Package tenant carries the per-request tenant identifier on context.Context.
// Every operation in this module runs on behalf of exactly one tenant; requests
// without one are rejected at the validation layer.
package tenant

import "context"

type ctxKey struct{}

// Into returns a context carrying the tenant identifier.
func Into(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From extracts the tenant identifier, if any, from the context.
func From(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok
}
