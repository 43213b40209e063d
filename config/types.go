package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Core settings
	Environment string
	ServiceName string
	LogLevel    string
	Version     string

	// Component configurations
	API       APIConfig
	HTTP      HTTPConfig
	Handler   HandlerConfig
	Retry     RetryConfig
	RateLimit RateLimitConfig
	Lambda    LambdaConfig
	Storage   StorageConfig
	History   HistoryConfig
}

// APIConfig describes the upstream health API the dashboard proxies.
type APIConfig struct {
	BaseURL      string
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64

	// UseMocks serves canned health data instead of calling BaseURL.
	UseMocks    bool
	MockLatency time.Duration
}

// HTTPConfig holds the inbound HTTP server configuration
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MetricsPath     string
}

// HandlerConfig holds handler configuration
type HandlerConfig struct {
	Timeout        time.Duration
	MaxRequestSize int64
	EnableHealth   bool
	EnableMetrics  bool
	EnableTracing  bool
	Platform       string // auto-detected if empty
}

// RetryConfig holds retry policy configuration
type RetryConfig struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// RateLimitConfig bounds inbound requests per process.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

// LambdaConfig holds Lambda-specific configuration
type LambdaConfig struct {
	Timeout time.Duration
}

// StorageConfig selects where health snapshots are kept.
// Provider is one of "fs", "s3" or "none".
type StorageConfig struct {
	Provider string
	BasePath string
	Timeout  time.Duration
	S3       S3Config
}

// S3Config holds S3 connection settings
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // LocalStack / MinIO
	UsePathStyle    bool
}

// HistoryConfig controls trend analysis against the previous snapshot.
type HistoryConfig struct {
	Enabled bool
	Key     string
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var errs []string

	if c.ServiceName == "" {
		errs = append(errs, "SERVICE_NAME is required")
	}

	if c.IsProduction() && c.API.BaseURL == "" {
		errs = append(errs, "API_BASE_URL is required in production")
	}
	if c.API.BaseURL != "" {
		if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, "API_BASE_URL must be an absolute URL")
		}
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, "API_TIMEOUT must be positive")
	}
	if c.API.MaxBodyBytes <= 0 {
		errs = append(errs, "API_MAX_BODY_BYTES must be positive")
	}
	if c.Handler.Timeout <= 0 {
		errs = append(errs, "HANDLER_TIMEOUT must be positive")
	}
	if c.Handler.MaxRequestSize <= 0 {
		errs = append(errs, "HANDLER_MAX_REQUEST_SIZE must be positive")
	}
	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, "RETRY_MAX_ATTEMPTS cannot be negative")
	}
	if c.Retry.BackoffMultiplier < 1.0 {
		errs = append(errs, "RETRY_BACKOFF_MULTIPLIER must be >= 1.0")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, "RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}

	switch c.Storage.Provider {
	case "none", "":
	case "fs":
		if c.Storage.BasePath == "" {
			errs = append(errs, "STORAGE_BASE_PATH is required for the fs provider")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			errs = append(errs, "S3_BUCKET is required for the s3 provider")
		}
	default:
		errs = append(errs, fmt.Sprintf("unsupported STORAGE_PROVIDER %q", c.Storage.Provider))
	}

	if c.History.Enabled && !c.HasStorage() {
		errs = append(errs, "HISTORY_ENABLED requires a STORAGE_PROVIDER")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// applyDefaults fills environment-dependent values left empty by the parser
func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" && !c.IsProduction() {
		c.API.BaseURL = DefaultAPIBaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")

	if c.Storage.Provider == "" {
		c.Storage.Provider = "none"
	}

	if c.IsProduction() {
		c.Handler.EnableMetrics = true
		c.Handler.EnableTracing = true
	}
}

// HasStorage reports whether a snapshot store is configured.
func (c *Config) HasStorage() bool {
	return c.Storage.Provider != "" && c.Storage.Provider != "none"
}

// IsLocal returns true if running in local/development environment
func (c *Config) IsLocal() bool {
	env := strings.ToLower(c.Environment)
	return env == "local" || env == "development" || env == "dev"
}

// IsStaging returns true if running in staging environment
func (c *Config) IsStaging() bool {
	env := strings.ToLower(c.Environment)
	return env == "staging" || env == "stage"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return isProduction(c.Environment)
}

// IsTest returns true if running in test environment
func (c *Config) IsTest() bool {
	env := strings.ToLower(c.Environment)
	return env == "test" || env == "testing"
}

func isProduction(env string) bool {
	env = strings.ToLower(env)
	return env == "production" || env == "prod"
}

// IsLambda detects if running in AWS Lambda
func IsLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" ||
		os.Getenv("LAMBDA_TASK_ROOT") != "" ||
		os.Getenv("AWS_EXECUTION_ENV") != ""
}
