/*
Package observability provides structured logging and Prometheus metrics for
the healthdash proxy.

	Provider (one instance per process)
	    ├── Logger  (JSON lines for Loki, one per component)
	    └── Metrics (Prometheus collectors, one set per component)

Components ask the provider for their own logger and metrics by name
("gateway", "handler", "history", ...). Collectors are registered on the
configured prometheus.Registerer, and the HTTP runtime exposes them through
promhttp.

# Usage

	provider := observability.NewProvider(&observability.Config{
	    ServiceName: "healthdash",
	    Environment: cfg.Environment,
	    LogLevel:    cfg.LogLevel,
	})
	defer provider.Close()

	log := provider.Logger("gateway")
	m := provider.Metrics("gateway")

	m.StartOperation("monitor")
	defer m.EndOperation("monitor")

	log.Info(ctx, "Monitoring upstream services", observability.Fields{
	    "endpoint": "/api/health/monitor",
	})

# Context Integration

The logger copies these context values into every entry when present:
  - types.TraceIDKey   -> trace_id
  - types.RequestIDKey -> request_id
  - types.EndpointKey  -> endpoint

# Metrics

  - {service}_{component}_processed_total{status,type}
  - {service}_{component}_errors_total{error_type,operation}
  - {service}_{component}_duration_seconds{operation}
  - {service}_{component}_response_size_bytes{operation}
  - {service}_{component}_in_progress{operation}

Characters outside [a-zA-Z0-9_] in the prefix are replaced with '_'.

# Testing

Package mocks has testify mocks for Logger, Metrics and Provider. Tests that
exercise the real collectors should pass a fresh prometheus.NewRegistry() in
Config.Registerer.
*/
package observability
