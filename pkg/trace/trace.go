package trace

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type ctxKey struct{}

// HeaderName is the request header carrying the trace id.
const HeaderName = "X-Trace-ID"

// GenerateTraceID 生成一个新的 trace ID
func GenerateTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// FromContext 从 context 中获取 trace_id
func FromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(ctxKey{}).(string); ok {
		return traceID
	}
	return ""
}

// WithContext 将 trace_id 添加到 context 中
func WithContext(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, traceID)
}

// FromHeaders picks X-Trace-ID, then X-Request-ID, then a fresh id.
func FromHeaders(traceHeader, requestHeader string) string {
	if v := strings.TrimSpace(traceHeader); v != "" {
		return v
	}
	if v := strings.TrimSpace(requestHeader); v != "" {
		return v
	}
	return GenerateTraceID()
}
