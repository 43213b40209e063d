// Package handler runs a Worker behind a middleware chain and adapts it to
// the HTTP and Lambda runtimes.
package handler

import (
	"context"

	"healthdash/config"
	"healthdash/observability"
	"healthdash/observability/types"
)

type ctxKey string

const (
	workerKey   ctxKey = "worker"
	platformKey ctxKey = "platform"
	attemptKey  ctxKey = "retry_attempt"
)

// Handler wraps a Worker with middleware.
type Handler struct {
	worker      Worker
	obs         observability.Provider
	middlewares []Middleware
	config      *config.HandlerConfig
}

// Middleware wraps a HandlerFunc to add a cross-cutting concern.
type Middleware func(next HandlerFunc) HandlerFunc

// HandlerFunc processes one request.
type HandlerFunc func(ctx context.Context, req Request) (Response, error)

// NewHandler creates a handler with no middleware. Most callers should use
// the Factory instead.
func NewHandler(worker Worker, provider observability.Provider, cfg *config.HandlerConfig) *Handler {
	return &Handler{
		worker:      worker,
		obs:         provider,
		config:      cfg,
		middlewares: []Middleware{},
	}
}

// Use appends middleware. The first middleware added is the outermost.
func (h *Handler) Use(middleware Middleware) {
	h.middlewares = append(h.middlewares, middleware)
}

// Handle runs req through the middleware chain and the worker.
func (h *Handler) Handle(ctx context.Context, req Request) (Response, error) {
	chain := h.buildHandlerChain()

	ctx = context.WithValue(ctx, types.RequestIDKey, req.ID)
	ctx = context.WithValue(ctx, types.EndpointKey, req.Type)
	ctx = context.WithValue(ctx, workerKey, h.worker.Name())
	ctx = context.WithValue(ctx, platformKey, h.config.Platform)

	return chain(ctx, req)
}

func (h *Handler) buildHandlerChain() HandlerFunc {
	chain := h.workerHandler
	for i := len(h.middlewares) - 1; i >= 0; i-- {
		chain = h.middlewares[i](chain)
	}
	return chain
}

func (h *Handler) workerHandler(ctx context.Context, req Request) (Response, error) {
	return h.worker.Process(ctx, req)
}

// Health checks the health of the worker.
func (h *Handler) Health(ctx context.Context) error {
	return h.worker.Health(ctx)
}

// Config returns the handler configuration.
func (h *Handler) Config() *config.HandlerConfig {
	return h.config
}

// Worker returns the underlying worker.
func (h *Handler) Worker() Worker {
	return h.worker
}

// Observability returns the provider the handler was built with.
func (h *Handler) Observability() observability.Provider {
	return h.obs
}

// WorkerName returns the worker name stored in ctx by Handle.
func WorkerName(ctx context.Context) string {
	name, _ := ctx.Value(workerKey).(string)
	return name
}

// RetryAttempt returns the zero-based attempt number set by RetryMiddleware.
func RetryAttempt(ctx context.Context) int {
	n, _ := ctx.Value(attemptKey).(int)
	return n
}
