package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"healthdash/apiclient"
	"healthdash/httpcall"
	"healthdash/internal/health/domain"
	"healthdash/observability/types"
)

// Backend endpoints.
const (
	HealthPath  = "/api/health"
	MonitorPath = "/api/health/monitor"
)

// JSONGetter is the subset of apiclient.Client the gateway needs.
type JSONGetter interface {
	GetJSON(ctx context.Context, endpoint string, out any) error
}

// Options configures an APIGateway.
type Options struct {
	// UseMocks serves canned reports instead of calling the backend.
	UseMocks bool

	// MockLatency delays canned reports. Monitor responses wait half as long
	// again.
	MockLatency time.Duration
}

// APIGateway implements domain.Repository.
type APIGateway struct {
	client  JSONGetter
	opts    Options
	logger  types.Logger
	metrics types.Metrics
	now     func() time.Time
}

var _ domain.Repository = (*APIGateway)(nil)

// NewAPIGateway creates a gateway. client may be nil in mock mode.
func NewAPIGateway(client JSONGetter, opts Options, logger types.Logger, metrics types.Metrics) *APIGateway {
	return &APIGateway{
		client:  client,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// GetHealth returns the backend's own report.
func (g *APIGateway) GetHealth(ctx context.Context) (*domain.Health, error) {
	const op = "get_health"
	start := time.Now()
	defer func() { g.metrics.RecordDuration(op, time.Since(start).Seconds()) }()

	if g.opts.UseMocks {
		h, err := g.mockHealth(ctx)
		g.record(op, err)
		return h, err
	}

	var raw json.RawMessage
	if err := g.client.GetJSON(ctx, HealthPath, &raw); err != nil {
		derr := classify("Health API call failed", err)
		g.fail(ctx, op, HealthPath, derr)
		return nil, derr
	}

	h, err := FromAPIResponse(raw, g.now())
	if err != nil {
		derr := domain.NewError(domain.CodeMappingError, "Health response mapping failed", err)
		g.fail(ctx, op, HealthPath, derr)
		return nil, derr
	}

	g.metrics.RecordSuccess(op)
	return h, nil
}

// MonitorHealth returns one report per monitored service.
func (g *APIGateway) MonitorHealth(ctx context.Context) ([]*domain.Health, error) {
	const op = "monitor_health"
	start := time.Now()
	defer func() { g.metrics.RecordDuration(op, time.Since(start).Seconds()) }()

	if g.opts.UseMocks {
		hs, err := g.mockMonitor(ctx)
		g.record(op, err)
		return hs, err
	}

	var raw json.RawMessage
	if err := g.client.GetJSON(ctx, MonitorPath, &raw); err != nil {
		derr := classify("Monitor health API call failed", err)
		g.fail(ctx, op, MonitorPath, derr)
		return nil, derr
	}

	hs, err := FromAPIListResponse(raw, g.now())
	if err != nil {
		derr := domain.NewError(domain.CodeMappingError, "Health list response mapping failed", err)
		g.fail(ctx, op, MonitorPath, derr)
		return nil, derr
	}

	g.metrics.RecordSuccess(op)
	return hs, nil
}

func (g *APIGateway) mockHealth(ctx context.Context) (*domain.Health, error) {
	if err := sleep(ctx, g.opts.MockLatency); err != nil {
		return nil, err
	}

	now := g.now()
	h, err := NewDefaultHealth(domain.StatusHealthy, map[string]any{
		"service":   "mock-api",
		"timestamp": now.UTC().Format(time.RFC3339Nano),
	}, now)
	if err != nil {
		return nil, domain.NewError(domain.CodeUnknownError, "Mock health creation failed", err)
	}
	return h, nil
}

func (g *APIGateway) mockMonitor(ctx context.Context) ([]*domain.Health, error) {
	if err := sleep(ctx, g.opts.MockLatency+g.opts.MockLatency/2); err != nil {
		return nil, err
	}

	now := g.now()
	services := []struct {
		status domain.Status
		name   string
	}{
		{domain.StatusHealthy, "api-gateway"},
		{domain.StatusDegraded, "database"},
		{domain.StatusUnhealthy, "cache"},
	}

	out := make([]*domain.Health, 0, len(services))
	for _, s := range services {
		h, err := NewDefaultHealth(s.status, map[string]any{"service": s.name}, now)
		if err != nil {
			return nil, domain.NewError(domain.CodeUnknownError, "Mock health array creation failed", err)
		}
		out = append(out, h)
	}
	return out, nil
}

func (g *APIGateway) record(op string, err error) {
	if err != nil {
		g.metrics.RecordError(op, domain.CodeOf(err))
		return
	}
	g.metrics.RecordSuccess(op)
}

func (g *APIGateway) fail(ctx context.Context, op, endpoint string, err *domain.Error) {
	g.metrics.RecordError(op, err.Code)
	g.logger.Warn(ctx, "Health gateway call failed", types.Fields{
		"operation": op,
		"endpoint":  endpoint,
		"code":      err.Code,
		"error":     err.Error(),
	})
}

// classify maps an apiclient failure onto a repository error code.
func classify(msg string, err error) *domain.Error {
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		return domain.NewError(domain.CodeUnknownError, msg, err)
	}

	switch {
	case errors.Is(err, httpcall.ErrTimeout), isDeadline(err):
		return domain.NewError(domain.CodeTimeoutError, msg, err)
	case errors.Is(err, httpcall.ErrTransport):
		return domain.NewError(domain.CodeNetworkError, msg, err)
	case errors.Is(err, httpcall.ErrCancelled):
		return domain.NewError(domain.CodeUnknownError, msg, err)
	case apiErr.StatusCode != 0:
		return domain.NewError(domain.CodeAPIError, fmt.Sprintf("%s: upstream returned %d", msg, apiErr.StatusCode), err)
	default:
		return domain.NewError(domain.CodeInvalidResponse, msg, err)
	}
}

// isDeadline reports whether the caller's context ended by deadline. Both
// the upstream path and mock mode use it, so a handler timeout is a
// TIMEOUT_ERROR either way.
func isDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctxError(ctx)
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctxError(ctx)
	}
}

func ctxError(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case isDeadline(err):
		return domain.NewError(domain.CodeTimeoutError, "Mock health request timed out", err)
	default:
		return domain.NewError(domain.CodeUnknownError, "Mock health request cancelled", err)
	}
}
