package context

import "context"

type tenantKeyContextKey struct{}

// WithTenantKey adds the resolved tenant key to context.
func WithTenantKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, tenantKeyContextKey{}, key)
}

// GetTenantKey returns tenant key from context or empty string.
func GetTenantKey(ctx context.Context) string {
	if v, ok := ctx.Value(tenantKeyContextKey{}).(string); ok {
		return v
	}
	return ""
}
