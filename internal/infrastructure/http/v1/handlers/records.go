package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"contalink/internal/core/apperror"
	"contalink/internal/core/tenant"
	"contalink/internal/domain/filter"
	"contalink/internal/infrastructure/http/v1/dto"
	"contalink/internal/metadata"
	"contalink/internal/records"
)

// HeaderBackendID selects a backend directly. Only honored in development.
const HeaderBackendID = "X-Empresa-Servidor-ID"

// RecordsHandler serves paginated rows of catalogue views.
type RecordsHandler struct {
	*BaseHandler
	service         *records.Service
	backendOverride bool
}

// NewRecordsHandler creates a records handler. backendOverride enables the
// HeaderBackendID header.
func NewRecordsHandler(base *BaseHandler, service *records.Service, backendOverride bool) *RecordsHandler {
	return &RecordsHandler{
		BaseHandler:     base,
		service:         service,
		backendOverride: backendOverride,
	}
}

// List returns one page of a view.
// GET /api/v1/views/:view/records?page=&pageSize=&search=&field=&value=&orderBy=
func (h *RecordsHandler) List(c *gin.Context) {
	view := c.Param("view")
	d, err := h.service.Descriptor(view)
	if err != nil {
		h.Error(c, err)
		return
	}

	var q dto.RecordsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	q.Defaults()

	backendID, ok := h.backendID(c)
	if !ok {
		return
	}

	opts := records.Options{
		OrderBy:  records.ParseOrderBy(q.OrderBy),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	ctx := c.Request.Context()

	var resp records.Response
	switch {
	case q.Search != "":
		resp, err = h.service.Search(ctx, view, backendID, q.Search, opts)
	case q.Field != "":
		resp, err = h.service.FilterBy(ctx, view, backendID, q.Field, q.Value, opts)
	default:
		resp, err = h.service.Fetch(ctx, view, backendID, opts)
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.response(d, resp))
}

// Query returns one page of a view filtered by structured conditions.
// POST /api/v1/views/:view/records/query
func (h *RecordsHandler) Query(c *gin.Context) {
	view := c.Param("view")
	d, err := h.service.Descriptor(view)
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.RecordsQueryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.Defaults()

	pred, err := filter.ItemsToPredicate(req.Filter)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid filter").WithDetail("error", err.Error()))
		return
	}

	backendID, ok := h.backendID(c)
	if !ok {
		return
	}

	opts := records.Options{
		Filter:   pred,
		OrderBy:  req.OrderBy,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	resp, err := h.service.Search(c.Request.Context(), view, backendID, req.Search, opts)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.response(d, resp))
}

func (h *RecordsHandler) response(d *metadata.TableDescriptor, resp records.Response) dto.RecordsResponse {
	return dto.NewRecordsResponse(d.Name, resp, records.Totals(d, resp.Rows))
}

// backendID returns the backend of the resolved company, or the override
// header when enabled.
func (h *RecordsHandler) backendID(c *gin.Context) (int64, bool) {
	if h.backendOverride {
		if raw := c.GetHeader(HeaderBackendID); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				h.Error(c, apperror.NewInvalidInput(HeaderBackendID, "must be a positive integer"))
				return 0, false
			}
			return id, true
		}
	}
	return tenant.GetBackendID(c.Request.Context()), true
}
