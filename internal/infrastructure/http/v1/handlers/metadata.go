package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contalink/internal/core/apperror"
	"contalink/internal/infrastructure/http/v1/dto"
	"contalink/internal/metadata"
)

type MetadataHandler struct {
	*BaseHandler
	registry *metadata.Registry
}

func NewMetadataHandler(base *BaseHandler, registry *metadata.Registry) *MetadataHandler {
	return &MetadataHandler{
		BaseHandler: base,
		registry:    registry,
	}
}

// ListViews returns a summary of every registered view.
// GET /api/v1/meta/views
func (h *MetadataHandler) ListViews(c *gin.Context) {
	defs := h.registry.List()
	out := make([]dto.ViewSummary, 0, len(defs))
	for _, d := range defs {
		out = append(out, dto.FromDescriptor(d))
	}
	h.OK(c, dto.NewListResponse(out))
}

// GetView returns the full descriptor of a view.
// GET /api/v1/meta/views/:name
func (h *MetadataHandler) GetView(c *gin.Context) {
	name := c.Param("name")
	def, ok := h.registry.Get(name)
	if !ok {
		h.Error(c, apperror.NewNotFound("view", name))
		return
	}
	c.JSON(http.StatusOK, def)
}

// ListModules returns every module with its views and presets.
// GET /api/v1/meta/modules
func (h *MetadataHandler) ListModules(c *gin.Context) {
	h.OK(c, dto.NewListResponse(h.registry.Modules()))
}

// GetModule returns one module.
// GET /api/v1/meta/modules/:name
func (h *MetadataHandler) GetModule(c *gin.Context) {
	name := c.Param("name")
	m, ok := h.registry.Module(name)
	if !ok {
		h.Error(c, apperror.NewNotFound("module", name))
		return
	}
	c.JSON(http.StatusOK, m)
}
