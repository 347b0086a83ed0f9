// Package reqctx carries per-request metadata through context.
// The app is single-user, but every command still gets a request id so
// log lines produced by one UI action can be correlated.
package reqctx

import "context"

// Trace identifies one logical command from the UI.
type Trace struct {
	TraceID   string
	RequestID string
}

type traceKey struct{}

// WithTrace attaches trace info to the context.
func WithTrace(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

// GetTrace returns trace info from the context, or nil.
func GetTrace(ctx context.Context) *Trace {
	if t, ok := ctx.Value(traceKey{}).(*Trace); ok {
		return t
	}
	return nil
}

type yearKey struct{}

// WithYear records the fiscal year a command operates on.
func WithYear(ctx context.Context, year string) context.Context {
	return context.WithValue(ctx, yearKey{}, year)
}

// GetYear returns the fiscal year from the context, or "".
func GetYear(ctx context.Context) string {
	if y, ok := ctx.Value(yearKey{}).(string); ok {
		return y
	}
	return ""
}
