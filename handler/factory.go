package handler

import (
	"os"

	"healthdash/config"
	"healthdash/observability"
)

// Platform identifiers.
const (
	PlatformHTTP   = "http"
	PlatformLambda = "lambda"
)

// Factory builds handlers with the standard middleware stack.
type Factory struct {
	worker       Worker
	provider     observability.Provider
	handlerCfg   config.HandlerConfig
	retryCfg     config.RetryConfig
	rateLimitCfg config.RateLimitConfig
}

// NewFactory creates a new handler factory with default configuration.
func NewFactory(worker Worker, provider observability.Provider) *Factory {
	return &Factory{
		worker:       worker,
		provider:     provider,
		handlerCfg:   config.DefaultHandlerConfig(),
		retryCfg:     config.DefaultRetryConfig(),
		rateLimitCfg: config.DefaultRateLimitConfig(),
	}
}

// WithHandlerConfig sets custom handler configuration.
func (f *Factory) WithHandlerConfig(cfg config.HandlerConfig) *Factory {
	f.handlerCfg = cfg
	return f
}

// WithRetryConfig sets custom retry configuration.
func (f *Factory) WithRetryConfig(cfg config.RetryConfig) *Factory {
	f.retryCfg = cfg
	return f
}

// WithRateLimitConfig sets custom inbound rate limiting.
func (f *Factory) WithRateLimitConfig(cfg config.RateLimitConfig) *Factory {
	f.rateLimitCfg = cfg
	return f
}

// FromConfig applies the handler, retry and rate limit sections of cfg.
func (f *Factory) FromConfig(cfg *config.Config) *Factory {
	return f.WithHandlerConfig(cfg.Handler).
		WithRetryConfig(cfg.Retry).
		WithRateLimitConfig(cfg.RateLimit)
}

// Create creates a handler for the configured platform, detecting it from the
// environment when unset.
func (f *Factory) Create() *Handler {
	if f.handlerCfg.Platform == "" || f.handlerCfg.Platform == "auto" {
		f.handlerCfg.Platform = DetectPlatform()
	}

	h := NewHandler(f.worker, f.provider, &f.handlerCfg)
	f.applyDefaultMiddleware(h)
	return h
}

// CreateHTTP creates a handler for the HTTP server.
func (f *Factory) CreateHTTP() *Handler {
	f.handlerCfg.Platform = PlatformHTTP
	return f.Create()
}

// CreateLambda creates a handler for AWS Lambda.
func (f *Factory) CreateLambda() *Handler {
	f.handlerCfg.Platform = PlatformLambda
	return f.Create()
}

func (f *Factory) applyDefaultMiddleware(h *Handler) {
	h.Use(RecoveryMiddleware(f.provider))

	if f.rateLimitCfg.Enabled {
		h.Use(RateLimitMiddleware(f.rateLimitCfg))
	}

	if f.handlerCfg.Timeout > 0 {
		h.Use(TimeoutMiddleware(f.handlerCfg.Timeout))
	}

	if f.handlerCfg.EnableTracing {
		h.Use(TracingMiddleware())
	}

	if f.handlerCfg.EnableMetrics {
		h.Use(MetricsMiddleware(f.provider))
	}

	h.Use(LoggingMiddleware(f.provider))
	h.Use(ValidationMiddleware())

	if f.retryCfg.MaxAttempts > 0 {
		h.Use(RetryMiddleware(&f.retryCfg))
	}
}

// DetectPlatform reports "lambda" inside the Lambda runtime and "http"
// everywhere else.
func DetectPlatform() string {
	if _, exists := os.LookupEnv("AWS_LAMBDA_FUNCTION_NAME"); exists {
		return PlatformLambda
	}
	if _, exists := os.LookupEnv("AWS_LAMBDA_RUNTIME_API"); exists {
		return PlatformLambda
	}
	return PlatformHTTP
}
