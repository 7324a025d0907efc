package middleware

import (
	"context"
)

// key is a typed context key; the type parameter pins what Value returns.
type key[T any] struct{ name string }

func (k key[T]) with(ctx context.Context, v T) context.Context {
	return context.WithValue(ctx, k, v)
}

func (k key[T]) from(ctx context.Context) (T, bool) {
	v, ok := ctx.Value(k).(T)
	return v, ok
}

var (
	requestIDKey      = key[string]{"request_id"}
	htmxKey           = key[HTMXRequest]{"htmx"}
	sessionKey        = key[*SessionData]{"session"}
	localeFallbackKey = key[string]{"locale_fallback"}
)

// WithRequestID stores the request id used in logs and error envelopes.
func WithRequestID(ctx context.Context, id string) context.Context {
	return requestIDKey.with(ctx, id)
}

func RequestID(ctx context.Context) (string, bool) {
	return requestIDKey.from(ctx)
}

// WithHTMX records the htmx headers of the current request.
func WithHTMX(ctx context.Context, hx HTMXRequest) context.Context {
	return htmxKey.with(ctx, hx)
}

// HTMXFrom returns the htmx headers, zero when the request came from a plain link.
func HTMXFrom(ctx context.Context) HTMXRequest {
	hx, _ := htmxKey.from(ctx)
	return hx
}

// IsHTMX reports whether the catalog region is being swapped in place.
func IsHTMX(ctx context.Context) bool { return HTMXFrom(ctx).Enabled }
