package records

import (
	"context"
	"time"

	"contalink/internal/core/apperror"
	"contalink/internal/metadata"
	"contalink/internal/metrics"
	"contalink/pkg/logger"
)

// Service resolves views from the catalogue, builds requests and executes them.
type Service struct {
	registry *metadata.Registry
	executor Executor
	name     string // executor label for metrics
	log      *logger.Logger
}

// NewService creates a records service. name labels metrics (http, postgres).
func NewService(registry *metadata.Registry, executor Executor, name string, log *logger.Logger) *Service {
	return &Service{
		registry: registry,
		executor: executor,
		name:     name,
		log:      log.WithComponent("records"),
	}
}

// Descriptor returns the descriptor for view.
func (s *Service) Descriptor(view string) (*metadata.TableDescriptor, error) {
	d, ok := s.registry.Get(view)
	if !ok {
		return nil, apperror.NewNotFound("view", view).WithCause(ErrUnknownView)
	}
	return d, nil
}

// Fetch reads one page of view.
func (s *Service) Fetch(ctx context.Context, view string, backendID int64, opts Options) (Response, error) {
	d, err := s.Descriptor(view)
	if err != nil {
		return Response{}, err
	}
	req, err := BuildRequest(d, backendID, opts)
	if err != nil {
		return Response{}, err
	}
	return s.Execute(ctx, req)
}

// Search reads rows of view where any search field contains query.
func (s *Service) Search(ctx context.Context, view string, backendID int64, query string, opts Options) (Response, error) {
	d, err := s.Descriptor(view)
	if err != nil {
		return Response{}, err
	}
	req, err := Search(d, backendID, query, opts)
	if err != nil {
		return Response{}, err
	}
	return s.Execute(ctx, req)
}

// FilterBy reads rows of view where field equals value.
func (s *Service) FilterBy(ctx context.Context, view string, backendID int64, field string, value any, opts Options) (Response, error) {
	d, err := s.Descriptor(view)
	if err != nil {
		return Response{}, err
	}
	req, err := EqualityFilter(d, backendID, field, value, opts)
	if err != nil {
		return Response{}, err
	}
	return s.Execute(ctx, req)
}

// Execute runs a prepared request.
func (s *Service) Execute(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	resp, err := s.executor.Execute(ctx, req)
	metrics.RecordsLatency.WithLabelValues(s.name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.RecordsQueries.WithLabelValues(s.name, "error").Inc()
		if !apperror.IsAppError(err) {
			err = apperror.NewQueryFailure("records query failed", err)
		}
		return Response{}, err
	}

	metrics.RecordsQueries.WithLabelValues(s.name, "ok").Inc()
	s.log.WithContext(ctx).Debugw("records fetched",
		"table", req.TableName,
		"rows", len(resp.Rows),
		"total", resp.Pagination.Total,
	)
	return resp, nil
}
