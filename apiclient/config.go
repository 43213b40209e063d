package apiclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"healthdash/config"
)

// Config validation codes.
const (
	CodeMissingBaseURL      = "MISSING_API_BASE_URL"
	CodeInvalidURLFormat    = "INVALID_URL_FORMAT"
	CodeHTTPSRequiredInProd = "HTTPS_REQUIRED_IN_PRODUCTION"
)

// ConfigError reports why an API configuration cannot be used.
type ConfigError struct {
	Code    string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Config describes how to reach the upstream API.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	// Headers are sent with every call; per-call headers win.
	Headers http.Header
}

// FromConfig extracts the API settings from the application configuration.
func FromConfig(cfg *config.Config) Config {
	return Config{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      cfg.API.Timeout,
		UserAgent:    cfg.API.UserAgent,
		MaxBodyBytes: cfg.API.MaxBodyBytes,
		Headers:      http.Header{"Accept": []string{"application/json"}},
	}
}

// Validate checks the base URL. production additionally requires https.
func (c Config) Validate(production bool) error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return &ConfigError{Code: CodeMissingBaseURL, Message: "API_BASE_URL environment variable is required"}
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ConfigError{Code: CodeInvalidURLFormat, Message: fmt.Sprintf("invalid API_BASE_URL format: %s", c.BaseURL)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ConfigError{Code: CodeInvalidURLFormat, Message: fmt.Sprintf("unsupported scheme %q in API_BASE_URL", u.Scheme)}
	}

	if production && u.Scheme != "https" {
		return &ConfigError{Code: CodeHTTPSRequiredInProd, Message: "API_BASE_URL must use HTTPS in production"}
	}

	return nil
}

// JoinURL joins base and path with exactly one slash between them.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
