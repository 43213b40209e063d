// Package worker exposes the health use cases as a handler.Worker.
package worker

import (
	"context"
	"fmt"
	"time"

	"healthdash/handler"
	"healthdash/internal/health/domain"
	"healthdash/internal/health/usecase"
	"healthdash/observability/types"
)

// Request types served by HealthWorker.
const (
	TypeHealth  = "health"
	TypeMonitor = "health.monitor"
)

// CodeRouteHandlerError is the error code of every failed health route.
const CodeRouteHandlerError = "HEALTH_ROUTE_HANDLER_ERROR"

// MetadataHealthSpecific is the response metadata key carrying the route
// failure summary that dashboard clients read.
const MetadataHealthSpecific = "healthSpecific"

const routeFailureMessage = "Health route handler failed"

// HealthGetter runs the single-report use case.
type HealthGetter interface {
	Execute(ctx context.Context) (*domain.Health, error)
}

// HealthMonitor runs the monitor use case.
type HealthMonitor interface {
	Execute(ctx context.Context) (*usecase.MonitorResult, error)
}

// Pinger checks upstream liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthWorker implements handler.Worker for the dashboard health routes.
type HealthWorker struct {
	getHealth HealthGetter
	monitor   HealthMonitor
	pinger    Pinger
	logger    types.Logger
	metrics   types.Metrics
}

var _ handler.Worker = (*HealthWorker)(nil)

// NewHealthWorker creates the worker. pinger may be nil, in which case the
// worker always reports itself healthy.
func NewHealthWorker(getHealth HealthGetter, monitor HealthMonitor, pinger Pinger, logger types.Logger, metrics types.Metrics) *HealthWorker {
	return &HealthWorker{
		getHealth: getHealth,
		monitor:   monitor,
		pinger:    pinger,
		logger:    logger,
		metrics:   metrics,
	}
}

// Name returns the worker name
func (w *HealthWorker) Name() string {
	return "health"
}

// Process routes the request by type.
func (w *HealthWorker) Process(ctx context.Context, request handler.Request) (handler.Response, error) {
	start := time.Now()
	defer func() {
		w.metrics.RecordDuration("worker_process", time.Since(start).Seconds())
	}()

	switch request.Type {
	case TypeHealth:
		h, err := w.getHealth.Execute(ctx)
		if err != nil {
			return w.failure(ctx, request, err), nil
		}
		return w.success(request, h)

	case TypeMonitor:
		result, err := w.monitor.Execute(ctx)
		if err != nil {
			return w.failure(ctx, request, err), nil
		}
		return w.success(request, result)

	default:
		w.metrics.RecordError("worker_process", "unsupported_request")
		return handler.NewErrorResponse(
			request.ID,
			handler.CodeUnsupported,
			"Unsupported request type",
			fmt.Sprintf("no health route for %q", request.Type),
		), nil
	}
}

// Health pings the upstream API when a pinger is configured.
func (w *HealthWorker) Health(ctx context.Context) error {
	if w.pinger == nil {
		return nil
	}
	return w.pinger.Ping(ctx)
}

func (w *HealthWorker) success(request handler.Request, data any) (handler.Response, error) {
	resp, err := handler.NewSuccessResponse(request.ID, data)
	if err != nil {
		w.metrics.RecordError("worker_process", "encode")
		return handler.NewErrorResponse(request.ID, handler.CodeInternal, "Failed to encode response", err.Error()), nil
	}
	w.metrics.RecordSuccess("worker_process")
	return resp, nil
}

func (w *HealthWorker) failure(ctx context.Context, request handler.Request, err error) handler.Response {
	code := domain.CodeOf(err)
	w.metrics.RecordError("worker_process", code)
	w.logger.Error(ctx, routeFailureMessage, err, types.Fields{
		"request_type": request.Type,
		"code":         code,
	})

	resp := handler.NewRetryableErrorResponse(
		request.ID,
		CodeRouteHandlerError,
		routeFailureMessage,
		err.Error(),
		domain.IsRetryable(err),
	)
	resp.Metadata = map[string]string{MetadataHealthSpecific: routeFailureMessage}
	return resp
}
