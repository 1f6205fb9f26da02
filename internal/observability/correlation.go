package observability

import (
	"context"
	"strings"
)

type correlationKey struct{}

// WithCorrelation binds a request correlation id to ctx. Blank ids leave ctx unchanged.
func WithCorrelation(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id bound by WithCorrelation, or "".
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
