package records

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"contalink/internal/core/apperror"
	appctx "contalink/internal/core/context"
	"contalink/pkg/logger"
)

var tracer = otel.Tracer("contalink/records")

// RecordsPath is the records endpoint on the backend API.
const RecordsPath = "/api/tns/records/"

// Executor runs a records request.
type Executor interface {
	Execute(ctx context.Context, req Request) (Response, error)
}

// HTTPExecutorConfig configures the backend API client.
type HTTPExecutorConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPExecutor posts requests to the backend records API.
type HTTPExecutor struct {
	client *resty.Client
	log    *logger.Logger
}

var _ Executor = (*HTTPExecutor)(nil)

// NewHTTPExecutor creates a records API client. Requests are not retried.
func NewHTTPExecutor(cfg HTTPExecutorConfig, log *logger.Logger) *HTTPExecutor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Api-Key", cfg.APIKey)
	}

	return &HTTPExecutor{
		client: client,
		log:    log.WithComponent("records-http"),
	}
}

// Execute posts req and normalizes the reply. Transport errors and non-2xx
// replies become QUERY_FAILED errors carrying the backend's message.
func (e *HTTPExecutor) Execute(ctx context.Context, req Request) (Response, error) {
	ctx, span := tracer.Start(ctx, "records.execute",
		trace.WithAttributes(
			attribute.String("records.table", req.TableName),
			attribute.Int64("records.backend_id", req.BackendID),
			attribute.Int("records.page", req.Page),
		))
	defer span.End()

	r := e.client.R().
		SetContext(ctx).
		SetBody(req)
	if key := appctx.GetTenantKey(ctx); key != "" {
		r.SetHeader("X-Subdomain", key)
	}

	resp, err := r.Post(RecordsPath)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		e.log.WithContext(ctx).Errorw("records request failed",
			"table", req.TableName,
			"error", err,
		)
		return Response{}, apperror.NewQueryFailure("records backend is unreachable", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))

	if resp.IsError() {
		msg := backendMessage(resp.Body())
		span.SetStatus(codes.Error, msg)
		e.log.WithContext(ctx).Warnw("records backend returned error",
			"table", req.TableName,
			"status", resp.StatusCode(),
			"message", msg,
		)
		return Response{}, apperror.NewQueryFailure(msg, nil).
			WithDetail("status", resp.StatusCode()).
			WithDetail("table", req.TableName)
	}

	return NormalizeResponse(resp.Body(), req)
}

// backendMessage extracts {"error": "..."} or {"detail": "..."} from an error body.
func backendMessage(body []byte) string {
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Detail != "" {
			return payload.Detail
		}
	}
	return http.StatusText(http.StatusBadGateway) + ": records query failed"
}
