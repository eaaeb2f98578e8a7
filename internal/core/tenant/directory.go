package tenant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"contalink/pkg/logger"
)

var tracer = otel.Tracer("contalink/tenant")

// Directory looks up company records.
// Implementations return ErrCompanyNotFound when nothing matches.
type Directory interface {
	BySubdomain(ctx context.Context, subdomain string) (*CompanyInfo, error)
	ByDomain(ctx context.Context, domain string) (*CompanyInfo, error)
}

// Company directory endpoints on the backend API.
const (
	bySubdomainPath = "/api/companies/by-subdomain/{key}/"
	byDomainPath    = "/api/companies/by-domain/{key}/"
)

// HTTPDirectoryConfig configures the backend company API client.
type HTTPDirectoryConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// RatePerSecond limits outbound lookups (0 = unlimited).
	RatePerSecond float64
	Burst         int
}

// HTTPDirectory queries the backend company API.
type HTTPDirectory struct {
	client  *resty.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

var _ Directory = (*HTTPDirectory)(nil)

// NewHTTPDirectory creates a company API client.
func NewHTTPDirectory(cfg HTTPDirectoryConfig, log *logger.Logger) *HTTPDirectory {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Api-Key", cfg.APIKey)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &HTTPDirectory{
		client:  client,
		limiter: limiter,
		log:     log.WithComponent("company-directory"),
	}
}

// BySubdomain implements Directory.
func (d *HTTPDirectory) BySubdomain(ctx context.Context, subdomain string) (*CompanyInfo, error) {
	return d.get(ctx, "subdomain", bySubdomainPath, subdomain)
}

// ByDomain implements Directory.
func (d *HTTPDirectory) ByDomain(ctx context.Context, domain string) (*CompanyInfo, error) {
	return d.get(ctx, "domain", byDomainPath, domain)
}

func (d *HTTPDirectory) get(ctx context.Context, strategy, path, key string) (*CompanyInfo, error) {
	ctx, span := tracer.Start(ctx, "tenant.directory.lookup",
		trace.WithAttributes(
			attribute.String("tenant.strategy", strategy),
			attribute.String("tenant.key", key),
		))
	defer span.End()

	if err := d.limiter.Wait(ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("lookup by %s %q: %w", strategy, key, err)
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetPathParam("key", key).
		Get(path)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("lookup by %s %q: %w", strategy, key, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))

	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrCompanyNotFound
	}
	if resp.IsError() {
		span.SetStatus(codes.Error, resp.Status())
		return nil, fmt.Errorf("lookup by %s %q: status %d", strategy, key, resp.StatusCode())
	}

	var c CompanyInfo
	if err := json.Unmarshal(resp.Body(), &c); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("decode company for %s %q: %w", strategy, key, err)
	}
	if !c.Valid() {
		return nil, ErrInvalidCompany
	}

	d.log.WithContext(ctx).Debugw("company found",
		"strategy", strategy,
		"key", key,
		"company_id", c.ID,
	)
	return &c, nil
}
