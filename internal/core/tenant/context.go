package tenant

import (
	"context"
	"errors"
)

// Context keys for tenant-related values.
type ctxKey int

const (
	sessionKey ctxKey = iota
	companyKey
)

// ErrNoSessionInContext is returned when no tenant session was attached.
var ErrNoSessionInContext = errors.New("tenant session not found in context")

// --- Session ---

// WithSession stores the request's tenant session in context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// GetSession retrieves the tenant session from context.
func GetSession(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(sessionKey).(*Session)
	if !ok || s == nil {
		return nil, ErrNoSessionInContext
	}
	return s, nil
}

// MustGetSession retrieves the session or panics.
// Use in handlers mounted behind the tenant middleware.
func MustGetSession(ctx context.Context) *Session {
	s, err := GetSession(ctx)
	if err != nil {
		panic("tenant session not in context: " + err.Error())
	}
	return s
}

// --- Company ---

// WithCompany stores the resolved company in context.
func WithCompany(ctx context.Context, c *CompanyInfo) context.Context {
	return context.WithValue(ctx, companyKey, c)
}

// GetCompany retrieves the resolved company from context, or nil.
func GetCompany(ctx context.Context) *CompanyInfo {
	c, _ := ctx.Value(companyKey).(*CompanyInfo)
	return c
}

// GetBackendID returns the company's backend id or 0.
func GetBackendID(ctx context.Context) int64 {
	if c := GetCompany(ctx); c != nil {
		return c.BackendID
	}
	return 0
}
