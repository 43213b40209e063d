package config

import "time"

// DefaultAPIBaseURL is used outside production when API_BASE_URL is unset.
const DefaultAPIBaseURL = "http://localhost:8000"

// DefaultAPIConfig returns defaults for the upstream health API
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		BaseURL:      DefaultAPIBaseURL,
		Timeout:      10 * time.Second,
		UserAgent:    "healthdash/1.0",
		MaxBodyBytes: 1 << 20, // 1MB
		UseMocks:     true,
		MockLatency:  100 * time.Millisecond,
	}
}

// DefaultHTTPConfig returns defaults for the inbound HTTP server
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Addr:            ":8080",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MetricsPath:     "/metrics",
	}
}

// DefaultHandlerConfig returns sensible defaults for handler configuration
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		Timeout:        30 * time.Second,
		MaxRequestSize: 1024 * 1024, // 1MB
		EnableHealth:   true,
		EnableMetrics:  true,
		EnableTracing:  true,
		Platform:       "", // Auto-detect
	}
}

// DefaultRetryConfig returns sensible defaults for retry configuration.
// Health reads are cheap to repeat, so only one retry is attempted.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       1,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        2 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// DefaultRateLimitConfig returns defaults for inbound rate limiting
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 20,
		Burst:             40,
	}
}

// DefaultLambdaConfig returns sensible defaults for Lambda configuration
func DefaultLambdaConfig() LambdaConfig {
	return LambdaConfig{
		Timeout: 30 * time.Second,
	}
}

// DefaultStorageConfig returns sensible defaults for storage configuration
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Provider: "none",
		Timeout:  5 * time.Second,
		S3:       DefaultS3Config(),
	}
}

// DefaultS3Config returns sensible defaults for S3 configuration
func DefaultS3Config() S3Config {
	return S3Config{
		Region: "us-east-2",
	}
}

// DefaultHistoryConfig returns defaults for snapshot history
func DefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		Enabled: false,
		Key:     "health/latest.json",
	}
}

// DefaultConfig returns a complete configuration with sensible defaults
// This is useful for testing or when you want to start with defaults and override specific parts
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		ServiceName: "healthdash",
		LogLevel:    "info",
		Version:     "1.0.0",

		API:       DefaultAPIConfig(),
		HTTP:      DefaultHTTPConfig(),
		Handler:   DefaultHandlerConfig(),
		Retry:     DefaultRetryConfig(),
		RateLimit: DefaultRateLimitConfig(),
		Lambda:    DefaultLambdaConfig(),
		Storage:   DefaultStorageConfig(),
		History:   DefaultHistoryConfig(),
	}
}
