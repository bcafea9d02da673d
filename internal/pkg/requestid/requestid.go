// Package requestid carries a request identifier through a context.Context so
// it can be attached to outbound API calls and logged alongside server traces.
package requestid

import "context"

// Header is the wire header used to propagate the request ID.
const Header = "x-request-id"

// contextKey is an unexported type for context keys in this package.
// Using a custom type prevents collisions with keys from other packages
// that might use the same underlying string value.
type contextKey string

const ctxKey contextKey = Header

// NewContext returns a copy of ctx carrying the given request ID.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey, id)
}

// FromContext returns the request ID stored in ctx, or "" if none is set.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey).(string); ok {
		return id
	}
	return ""
}
