package logger

import "context"

type ctxKey int

const requestIDKey ctxKey = iota

// WithRequestID stores the request ID in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ForRequest binds l to ctx, so entries carry the request ID stored in
// ctx. A nil l means Default().
func ForRequest(ctx context.Context, l Logger) Logger {
	if l == nil {
		l = Default()
	}
	return l.WithContext(ctx)
}
