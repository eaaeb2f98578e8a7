package handlers

import (
	"github.com/gin-gonic/gin"

	"contalink/internal/core/host"
	"contalink/internal/core/tenant"
	"contalink/internal/infrastructure/http/v1/dto"
	"contalink/pkg/logger"
)

// TenantHandler exposes the tenant session of the caller.
type TenantHandler struct {
	*BaseHandler
	resolver *tenant.Resolver
	log      *logger.Logger
}

// NewTenantHandler creates a tenant handler.
func NewTenantHandler(base *BaseHandler, resolver *tenant.Resolver, log *logger.Logger) *TenantHandler {
	return &TenantHandler{
		BaseHandler: base,
		resolver:    resolver,
		log:         log.WithComponent("tenant-handler"),
	}
}

// Get loads and returns the company for the request.
// GET /api/v1/tenant
func (h *TenantHandler) Get(c *gin.Context) {
	h.load(c, false)
}

// Refresh reloads the company, bypassing the cache.
// POST /api/v1/tenant/refresh
func (h *TenantHandler) Refresh(c *gin.Context) {
	h.load(c, true)
}

// Override switches the session to another tenant key and loads it.
// POST /api/v1/tenant/override
func (h *TenantHandler) Override(c *gin.Context) {
	var req dto.OverrideRequest
	if !h.BindJSON(c, &req) {
		return
	}
	s, ok := h.Session(c)
	if !ok {
		return
	}

	key := s.SetOverride(req.Subdomain)
	h.log.WithContext(c.Request.Context()).Infow("tenant override set",
		"key", key.String(),
		"source", key.Source,
	)
	h.load(c, false)
}

// Host shows how the request host was parsed and which key it resolves to.
// GET /api/v1/tenant/host
func (h *TenantHandler) Host(c *gin.Context) {
	s, ok := h.Session(c)
	if !ok {
		return
	}
	raw := tenant.NewHeaderContext(c.Request).Host()
	h.OK(c, dto.HostResponse{
		Host:   raw,
		Parsed: host.Parse(raw),
		Key:    s.TenantKey(),
	})
}

func (h *TenantHandler) load(c *gin.Context, force bool) {
	s, ok := h.Session(c)
	if !ok {
		return
	}
	if _, err := s.LoadTenant(c.Request.Context(), force); err != nil {
		h.Error(c, tenant.ToAppError(err, s.TenantKey()))
		return
	}
	h.OK(c, dto.NewTenantResponse(s))
}
