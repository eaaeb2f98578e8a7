package middleware

import (
	"github.com/gin-gonic/gin"

	"contalink/internal/core/apperror"
	appctx "contalink/internal/core/context"
	"contalink/internal/core/tenant"
	"contalink/pkg/logger"
)

// HeaderSubdomain carries an explicit tenant key. It wins over every other
// source, the host included.
const HeaderSubdomain = "X-Subdomain"

// TenantSession attaches a tenant session to the request context. The
// tenant key is resolved here but the company is not loaded; mount
// RequireTenant on routes that need it.
func TenantSession(resolver *tenant.Resolver, factory tenant.ContextFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := factory(c.Writer, c.Request)
		session := tenant.NewSession(resolver, rc, c.GetHeader(HeaderSubdomain))
		key := session.TenantKey()

		ctx := tenant.WithSession(c.Request.Context(), session)
		if !key.IsZero() {
			ctx = appctx.WithTenantKey(ctx, key.String())
			c.Set("tenant_key", key.String())
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireTenant loads the session's company and stores it in the request
// context. Requests without a resolvable company are rejected.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		session, err := tenant.GetSession(ctx)
		if err != nil {
			_ = c.Error(apperror.NewInternal(err))
			c.Abort()
			return
		}

		company, err := session.LoadTenant(ctx, false)
		if err != nil {
			_ = c.Error(tenant.ToAppError(err, session.TenantKey()))
			c.Abort()
			return
		}
		if company == nil {
			_ = c.Error(apperror.NewNotFound("company", session.TenantKey().String()))
			c.Abort()
			return
		}

		logger.Debug(ctx, "tenant resolved",
			"company_id", company.ID,
			"synthetic", company.Synthetic,
		)

		c.Request = c.Request.WithContext(tenant.WithCompany(ctx, company))
		c.Next()
	}
}
