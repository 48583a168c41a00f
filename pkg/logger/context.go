package logger

import "context"

type requestIDKey struct{}

// ContextWithRequestID returns a copy of ctx carrying the request id
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id stored in ctx, or ""
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// FromContext returns l tagged with the request id carried by ctx, if any
func (l *Logger) FromContext(ctx context.Context) *Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return l.WithRequestID(id)
	}
	return l
}
