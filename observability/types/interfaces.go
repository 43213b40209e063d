// Package types declares the logging and metrics contracts shared by every
// healthdash component, kept separate so adapters and mocks avoid import cycles.
package types

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
)

// Logger defines the contract for structured logging.
// Implementations emit JSON suitable for Loki and pull correlation
// identifiers (see ContextKey) out of the supplied context.
type Logger interface {
	// Info logs an informational message.
	Info(ctx context.Context, msg string, fields Fields)

	// Error logs a failure together with the error that caused it.
	Error(ctx context.Context, msg string, err error, fields Fields)

	// Warn logs a condition that does not prevent the operation.
	Warn(ctx context.Context, msg string, fields Fields)

	// Debug logs detail that is normally filtered out in production.
	Debug(ctx context.Context, msg string, fields Fields)

	// WithFields returns a Logger that adds fields to every entry.
	WithFields(fields Fields) Logger
}

// Metrics defines the contract for metrics collection.
// Operation names are free-form labels such as "health" or "health.monitor".
type Metrics interface {
	// RecordSuccess increments the success counter for an operation.
	RecordSuccess(operation string)

	// RecordError increments the error counters for an operation.
	// errorType is a small closed vocabulary ("timeout", "network", ...).
	RecordError(operation string, errorType string)

	// RecordDuration observes an operation duration in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordResponseSize observes the size of a response body in bytes.
	RecordResponseSize(operation string, bytes int64)

	// StartOperation increments the in-progress gauge.
	// Must be paired with EndOperation.
	StartOperation(operation string)

	// EndOperation decrements the in-progress gauge.
	EndOperation(operation string)
}

// Fields represents structured logging fields as key-value pairs.
// Values must be JSON-serializable.
type Fields map[string]interface{}

// ContextKey is the type of context keys the logger extracts.
type ContextKey string

// Context keys populated by the handler layer.
const (
	TraceIDKey   ContextKey = "trace_id"
	RequestIDKey ContextKey = "request_id"
	EndpointKey  ContextKey = "endpoint"
)

// Config holds observability configuration for the provider.
type Config struct {
	// ServiceName identifies the service in logs and prefixes metric names.
	ServiceName string

	// Environment is attached to every log entry ("local", "production", ...).
	Environment string

	// LogLevel is the minimum level written: "debug", "info", "warn" or "error".
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stdout.
	LogOutput io.Writer

	// Registerer receives metric collectors. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer

	// AdditionalFields are included in every log entry.
	AdditionalFields Fields
}

// Provider manages the lifecycle of observability components.
// Repeated calls with the same component name return the same instance.
type Provider interface {
	// Logger returns the logger for a component.
	Logger(component string) Logger

	// Metrics returns the metrics collector for a component.
	Metrics(component string) Metrics

	// Close releases the log output if it is closable.
	Close() error
}
