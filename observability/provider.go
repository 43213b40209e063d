package observability

import (
	"fmt"
	"io"
	"os"
	"sync"

	"healthdash/observability/logger"
	"healthdash/observability/metrics"
	"healthdash/observability/types"

	"github.com/prometheus/client_golang/prometheus"
)

// Logger is a type alias for the Logger interface from the types package.
type Logger = types.Logger

// Metrics is a type alias for the Metrics interface from the types package.
type Metrics = types.Metrics

// Fields is a type alias for structured logging fields.
type Fields = types.Fields

// Config is a type alias for the observability configuration.
type Config = types.Config

// Provider is a type alias for the Provider interface from the types package.
type Provider = types.Provider

// DefaultProvider implements Provider.
// Loggers and metrics are created lazily, once per component.
type DefaultProvider struct {
	config  *Config
	loggers map[string]Logger
	metrics map[string]Metrics
	mu      sync.RWMutex
}

// NewProvider creates a new observability provider with the given configuration.
//
// Example:
//
//	provider := NewProvider(&Config{
//		ServiceName: "healthdash",
//		Environment: "production",
//		LogLevel:    "info",
//	})
//	log := provider.Logger("gateway")
func NewProvider(config *Config) Provider {
	if config.LogOutput == nil {
		config.LogOutput = os.Stdout
	}
	if config.Registerer == nil {
		config.Registerer = prometheus.DefaultRegisterer
	}

	return &DefaultProvider{
		config:  config,
		loggers: make(map[string]Logger),
		metrics: make(map[string]Metrics),
	}
}

// Logger returns the Logger for component. The logger carries the
// provider's AdditionalFields plus a "component" field, and its service
// name is "{ServiceName}.{component}".
func (p *DefaultProvider) Logger(component string) Logger {
	return lookup(&p.mu, p.loggers, component, func() Logger {
		fields := make(Fields, len(p.config.AdditionalFields)+1)
		for k, v := range p.config.AdditionalFields {
			fields[k] = v
		}
		fields["component"] = component

		return logger.New(
			fmt.Sprintf("%s.%s", p.config.ServiceName, component),
			p.config.Environment,
			p.config.LogLevel,
			p.config.LogOutput,
			fields,
		)
	})
}

// Metrics returns the Metrics collector for component, registering its
// collectors on the configured Registerer the first time.
func (p *DefaultProvider) Metrics(component string) Metrics {
	return lookup(&p.mu, p.metrics, component, func() Metrics {
		return metrics.New(fmt.Sprintf("%s_%s", p.config.ServiceName, component), p.config.Registerer)
	})
}

// lookup returns cache[key], calling create under the write lock on a miss.
func lookup[T any](mu *sync.RWMutex, cache map[string]T, key string, create func() T) T {
	mu.RLock()
	v, ok := cache[key]
	mu.RUnlock()
	if ok {
		return v
	}

	mu.Lock()
	defer mu.Unlock()
	if v, ok := cache[key]; ok {
		return v
	}
	v = create()
	cache[key] = v
	return v
}

// Close closes LogOutput when it is an io.Closer other than stdout/stderr.
func (p *DefaultProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if closer, ok := p.config.LogOutput.(io.Closer); ok {
		if closer != os.Stdout && closer != os.Stderr {
			return closer.Close()
		}
	}

	return nil
}
