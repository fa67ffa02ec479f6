package paybridge

import "context"

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID stores a request correlation ID in the context. The
// Transport propagates it on outbound calls as the X-Request-Id header.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom retrieves the request correlation ID from the context,
// or "" if none was set.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
