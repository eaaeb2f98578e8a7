// Package context carries request-scoped values (trace ids, tenant key)
// shared by logging and transport.
package context

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceContext contains request tracing information.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

type traceContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, tc *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, tc)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetTraceID returns the trace id from context, falling back to the active
// span's id, or empty string.
func GetTraceID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.TraceID
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// NewTraceContext builds the ids for a request. Empty ids are generated,
// and a valid span context supplies the trace and span ids.
func NewTraceContext(requestID, traceID string, sc trace.SpanContext) *TraceContext {
	tc := &TraceContext{
		TraceID:   traceID,
		RequestID: requestID,
	}
	if sc.IsValid() {
		tc.TraceID = sc.TraceID().String()
		tc.SpanID = sc.SpanID().String()
	}
	if tc.RequestID == "" {
		tc.RequestID = uuid.New().String()
	}
	if tc.TraceID == "" {
		tc.TraceID = uuid.New().String()
	}
	if tc.SpanID == "" {
		tc.SpanID = uuid.New().String()[:16]
	}
	return tc
}
