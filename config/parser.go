package config

import (
	"healthdash/utils"
)

// parse reads configuration from environment variables
func parse() *Config {
	env := utils.GetEnv("ENVIRONMENT", utils.GetEnv("ENV", "local"))

	cfg := &Config{
		// Core
		Environment: env,
		ServiceName: utils.GetEnv("SERVICE_NAME", "healthdash"),
		LogLevel:    utils.GetEnv("LOG_LEVEL", "info"),
		Version:     utils.GetEnv("SERVICE_VERSION", "1.0.0"),

		// Upstream API
		API: APIConfig{
			BaseURL:      utils.GetEnv("API_BASE_URL", ""),
			Timeout:      utils.GetEnvDuration("API_TIMEOUT", "10s"),
			UserAgent:    utils.GetEnv("API_USER_AGENT", "healthdash/1.0"),
			MaxBodyBytes: utils.GetEnvInt64("API_MAX_BODY_BYTES", 1<<20),
			UseMocks:     utils.GetEnvBool("API_USE_MOCKS", !isProduction(env)),
			MockLatency:  utils.GetEnvDuration("API_MOCK_LATENCY", "100ms"),
		},

		// Inbound HTTP server
		HTTP: HTTPConfig{
			Addr:            utils.GetEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:     utils.GetEnvDuration("HTTP_READ_TIMEOUT", "15s"),
			WriteTimeout:    utils.GetEnvDuration("HTTP_WRITE_TIMEOUT", "30s"),
			ShutdownTimeout: utils.GetEnvDuration("HTTP_SHUTDOWN_TIMEOUT", "10s"),
			MetricsPath:     utils.GetEnv("HTTP_METRICS_PATH", "/metrics"),
		},

		// Handler
		Handler: HandlerConfig{
			Timeout:        utils.GetEnvDuration("HANDLER_TIMEOUT", "30s"),
			MaxRequestSize: utils.GetEnvInt64("HANDLER_MAX_REQUEST_SIZE", 1024*1024),
			EnableHealth:   utils.GetEnvBool("HANDLER_ENABLE_HEALTH", true),
			EnableMetrics:  utils.GetEnvBool("HANDLER_ENABLE_METRICS", true),
			EnableTracing:  utils.GetEnvBool("HANDLER_ENABLE_TRACING", true),
			Platform:       utils.GetEnv("HANDLER_PLATFORM", ""),
		},

		// Retry
		Retry: RetryConfig{
			MaxAttempts:       utils.GetEnvInt("RETRY_MAX_ATTEMPTS", 1),
			InitialBackoff:    utils.GetEnvDuration("RETRY_INITIAL_BACKOFF", "100ms"),
			MaxBackoff:        utils.GetEnvDuration("RETRY_MAX_BACKOFF", "2s"),
			BackoffMultiplier: utils.GetEnvFloat64("RETRY_BACKOFF_MULTIPLIER", 2.0),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:           utils.GetEnvBool("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: utils.GetEnvFloat64("RATE_LIMIT_RPS", 20),
			Burst:             utils.GetEnvInt("RATE_LIMIT_BURST", 40),
		},

		// Lambda
		Lambda: LambdaConfig{
			Timeout: utils.GetEnvDuration("LAMBDA_TIMEOUT", "30s"),
		},

		// Storage
		Storage: StorageConfig{
			Provider: utils.GetEnv("STORAGE_PROVIDER", "none"),
			BasePath: utils.GetEnv("STORAGE_BASE_PATH", ""),
			Timeout:  utils.GetEnvDuration("STORAGE_TIMEOUT", "5s"),
			S3: S3Config{
				Region:          utils.GetEnv("AWS_REGION", "us-east-2"),
				Bucket:          utils.GetEnv("S3_BUCKET", ""),
				AccessKeyID:     utils.GetEnv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: utils.GetEnv("AWS_SECRET_ACCESS_KEY", ""),
				Endpoint:        utils.GetEnv("S3_ENDPOINT", ""),
				UsePathStyle:    utils.GetEnvBool("S3_USE_PATH_STYLE", false),
			},
		},

		// History
		History: HistoryConfig{
			Enabled: utils.GetEnvBool("HISTORY_ENABLED", false),
			Key:     utils.GetEnv("HISTORY_KEY", "health/latest.json"),
		},
	}

	cfg.applyDefaults()

	return cfg
}

// FromEnv parses and validates configuration from the current environment
// without touching the provider singleton or loading .env files.
func FromEnv() (*Config, error) {
	cfg := parse()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
