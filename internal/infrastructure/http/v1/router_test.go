package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contalink/internal/core/apperror"
	"contalink/internal/core/tenant"
	"contalink/internal/infrastructure/http/v1/handlers"
	"contalink/internal/metadata"
	"contalink/internal/metrics"
	"contalink/internal/records"
	"contalink/pkg/logger"
)

type mapDirectory map[string]*tenant.CompanyInfo

func (d mapDirectory) BySubdomain(_ context.Context, sub string) (*tenant.CompanyInfo, error) {
	if c, ok := d[sub]; ok {
		return c, nil
	}
	return nil, tenant.ErrCompanyNotFound
}

func (d mapDirectory) ByDomain(_ context.Context, domain string) (*tenant.CompanyInfo, error) {
	return d.BySubdomain(context.Background(), domain)
}

type recordingExecutor struct {
	last records.Request
	resp records.Response
	err  error
}

func (e *recordingExecutor) Execute(_ context.Context, req records.Request) (records.Response, error) {
	e.last = req
	return e.resp, e.err
}

type testEnv struct {
	router   http.Handler
	executor *recordingExecutor
}

func newTestEnv(t *testing.T, backend bool, dev bool) *testEnv {
	t.Helper()

	var dir tenant.Directory
	if backend {
		dir = mapDirectory{
			"acme": {ID: 10, Name: "Acme", Subdomain: "acme", Mode: tenant.ModePOS, BackendID: 7, IsActive: true},
			"acme.com.co": {ID: 11, Name: "Acme Custom", CustomDomain: "acme.com.co", BackendID: 8, IsActive: true},
		}
	}
	log := logger.Nop()
	resolver := tenant.NewResolver(tenant.ResolverConfig{BackendEnabled: backend}, dir, nil, log)

	reg := metadata.MustLoadDefault()
	exec := &recordingExecutor{}
	svc := records.NewService(reg, exec, "test", log)

	promReg := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(promReg))

	router := NewRouter(RouterConfig{
		Logger:         log,
		Resolver:       resolver,
		ContextFactory: tenant.NewContextFactory(dev, ""),
		Registry:       reg,
		Records:        svc,
		HealthChecks: map[string]handlers.Pinger{
			"directory": handlers.PingFunc(func(context.Context) error { return nil }),
		},
		DevOverrides: dev,
		Metrics:      promReg,
	})
	return &testEnv{router: router, executor: exec}
}

func (e *testEnv) do(t *testing.T, method, host, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Host = host
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false, false)

	w := env.do(t, http.MethodGet, "localhost", "/health/live", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "localhost", "/health/ready", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["checks"].(map[string]any)["directory"])
}

func TestHealthReadyReportsFailures(t *testing.T) {
	h := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"redis": handlers.PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	}, nil)
	router := NewRouter(RouterConfig{Logger: logger.Nop(), Resolver: tenant.NewResolver(tenant.ResolverConfig{}, nil, nil, logger.Nop())})
	router.GET("/ready-check", h.Ready)

	req := httptest.NewRequest(http.MethodGet, "/ready-check", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestTenantFromHost(t *testing.T) {
	env := newTestEnv(t, true, false)

	w := env.do(t, http.MethodGet, "acme.contalink.com", "/api/v1/tenant", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "acme", body["key"].(map[string]any)["subdomain"])
	assert.Equal(t, float64(10), body["company"].(map[string]any)["id"])
	assert.Equal(t, "/subdomain/restaurant", body["preferences"].(map[string]any)["homePath"])
	assert.Equal(t, false, body["synthetic"])
}

func TestTenantFallbackWhenBackendDisabled(t *testing.T) {
	env := newTestEnv(t, false, false)

	w := env.do(t, http.MethodGet, "app.localhost:3000", "/api/v1/tenant", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["synthetic"])
	assert.Equal(t, "/subdomain/pro", body["preferences"].(map[string]any)["homePath"])
}

func TestTenantExplicitHeaderWins(t *testing.T) {
	env := newTestEnv(t, true, false)

	w := env.do(t, http.MethodGet, "other.contalink.com", "/api/v1/tenant", nil, map[string]string{
		"X-Subdomain": "ACME",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "acme", decode(t, w)["key"].(map[string]any)["subdomain"])
}

func TestTenantNoKeyWithBackendDisabled(t *testing.T) {
	env := newTestEnv(t, false, false)

	w := env.do(t, http.MethodGet, "", "/api/v1/tenant", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeTenantRequired, decode(t, w)["code"])
}

func TestTenantHost(t *testing.T) {
	env := newTestEnv(t, true, false)

	w := env.do(t, http.MethodGet, "shop.acme.com.co", "/api/v1/tenant/host", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	parsed := decode(t, w)["parsed"].(map[string]any)
	assert.Equal(t, "acme.com.co", parsed["domain"])
	assert.Equal(t, "shop", parsed["subdomain"])
}

func TestTenantOverrideSetsCookie(t *testing.T) {
	env := newTestEnv(t, true, true)

	w := env.do(t, http.MethodPost, "localhost:3000", "/api/v1/tenant/override", map[string]string{"subdomain": "acme"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, float64(10), decode(t, w)["company"].(map[string]any)["id"])
	assert.Contains(t, w.Header().Get("Set-Cookie"), tenant.DefaultOverrideCookie+"=acme")
}

func TestMetadataRoutes(t *testing.T) {
	env := newTestEnv(t, false, false)

	w := env.do(t, http.MethodGet, "app.localhost", "/api/v1/meta/views", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Greater(t, decode(t, w)["count"], float64(0))

	w = env.do(t, http.MethodGet, "app.localhost", "/api/v1/meta/views/facturacion", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "KARDEX", decode(t, w)["tableName"])

	w = env.do(t, http.MethodGet, "app.localhost", "/api/v1/meta/views/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperror.CodeNotFound, decode(t, w)["code"])

	w = env.do(t, http.MethodGet, "app.localhost", "/api/v1/meta/modules/facturacion", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecordsList(t *testing.T) {
	env := newTestEnv(t, true, false)
	env.executor.resp = records.Response{
		Rows: []records.Record{
			{"NUMERO": 1, "TOTAL": 100.5},
			{"NUMERO": 2, "TOTAL": "20"},
		},
		Pagination: records.NewPagination(2, 1, 50),
	}

	w := env.do(t, http.MethodGet, "acme.contalink.com", "/api/v1/views/facturacion/records?search=abc&pageSize=10&orderBy=-FECHA", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req := env.executor.last
	assert.Equal(t, int64(7), req.BackendID)
	assert.Equal(t, "KARDEX", req.TableName)
	assert.Equal(t, 10, req.PageSize)
	require.Len(t, req.OrderBy, 1)
	assert.Equal(t, records.Desc, req.OrderBy[0].Direction)
	assert.NotNil(t, req.Filter)

	body := decode(t, w)
	assert.Equal(t, "facturacion", body["view"])
	assert.Len(t, body["data"], 2)
	assert.Equal(t, "120.5", body["totals"].(map[string]any)["TOTAL"])
}

func TestRecordsUnknownCompany(t *testing.T) {
	env := newTestEnv(t, true, false)

	// Unknown subdomains get a demo company, which has no backend.
	w := env.do(t, http.MethodGet, "ghost.example.org", "/api/v1/views/facturacion/records", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, apperror.CodeTenantRequired, decode(t, w)["code"])

	// A bare unknown domain resolves to nothing.
	w = env.do(t, http.MethodGet, "example.org", "/api/v1/views/facturacion/records", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	assert.Nil(t, env.executor.last.Fields)
}

func TestRecordsUnknownView(t *testing.T) {
	env := newTestEnv(t, true, false)

	w := env.do(t, http.MethodGet, "acme.contalink.com", "/api/v1/views/nope/records", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordsQueryFilters(t *testing.T) {
	env := newTestEnv(t, true, false)

	w := env.do(t, http.MethodPost, "acme.contalink.com", "/api/v1/views/facturacion/records/query", map[string]any{
		"filter": []map[string]any{
			{"field": "CODCOMP", "operator": "eq", "value": "FV"},
		},
		"page": 2,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	filters, err := env.executor.last.Filters()
	require.NoError(t, err)
	assert.NotEmpty(t, filters)
	assert.Equal(t, 2, env.executor.last.Page)
}

func TestRecordsQueryRejectsBadOperator(t *testing.T) {
	env := newTestEnv(t, true, false)

	w := env.do(t, http.MethodPost, "acme.contalink.com", "/api/v1/views/facturacion/records/query", map[string]any{
		"filter": []map[string]any{
			{"field": "CODCOMP", "operator": "like", "value": "FV"},
		},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, decode(t, w)["code"])
}

func TestRecordsBackendOverride(t *testing.T) {
	headers := map[string]string{handlers.HeaderBackendID: "42"}

	dev := newTestEnv(t, true, true)
	w := dev.do(t, http.MethodGet, "acme.localhost", "/api/v1/views/facturacion/records", nil, headers)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(42), dev.executor.last.BackendID)

	prod := newTestEnv(t, true, false)
	w = prod.do(t, http.MethodGet, "acme.contalink.com", "/api/v1/views/facturacion/records", nil, headers)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(7), prod.executor.last.BackendID)
}

func TestRecordsQueryFailure(t *testing.T) {
	env := newTestEnv(t, true, false)
	env.executor.err = errors.New("backend down")

	w := env.do(t, http.MethodGet, "acme.contalink.com", "/api/v1/views/facturacion/records", nil, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, apperror.CodeQueryFailure, decode(t, w)["code"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, true, false)
	env.do(t, http.MethodGet, "acme.contalink.com", "/api/v1/tenant", nil, nil)

	w := env.do(t, http.MethodGet, "localhost", "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "contalink_tenant_lookups_total")
}
