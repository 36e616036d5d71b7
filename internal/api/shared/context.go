package shared

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// ContextKey is the type of request context keys set by this package.
type ContextKey string

// TraceIDKey holds the request trace ID in the context.
const TraceIDKey ContextKey = "traceID"

// TraceIDHeader carries the trace ID in both directions.
const TraceIDHeader = "X-Trace-ID"

// NewTraceID returns the caller's X-Trace-ID when it is a valid UUID, so a
// client polling a task can correlate its requests, and a fresh one otherwise.
func NewTraceID(r *http.Request) string {
	if id := r.Header.Get(TraceIDHeader); id != "" {
		if parsed, err := uuid.Parse(id); err == nil {
			return parsed.String()
		}
	}
	return uuid.NewString()
}

// SetTraceID stores traceID in the context.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context, or "" when unset.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}
