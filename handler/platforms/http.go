// Package platforms adapts a handler.Handler to concrete runtimes.
package platforms

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"healthdash/config"
	"healthdash/handler"

	"github.com/google/uuid"
)

const defaultMaxRequestSize = 1024 * 1024

// HTTPAdapter serves a handler over plain HTTP. Paths under /api/ become
// request types ("/api/health/monitor" is "health.monitor").
type HTTPAdapter struct {
	handler     *handler.Handler
	metricsPath string
	metrics     http.Handler
}

// HTTPOption configures an HTTPAdapter.
type HTTPOption func(*HTTPAdapter)

// WithMetricsHandler exposes h (typically promhttp) at path.
func WithMetricsHandler(path string, h http.Handler) HTTPOption {
	return func(a *HTTPAdapter) {
		a.metricsPath = path
		a.metrics = h
	}
}

// NewHTTPAdapter creates a new HTTP adapter with the provided handler.
func NewHTTPAdapter(h *handler.Handler, opts ...HTTPOption) *HTTPAdapter {
	a := &HTTPAdapter{handler: h}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ServeHTTP implements http.Handler.
func (a *HTTPAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if a.isHealthCheck(r.URL.Path) {
		a.handleHealth(w, r)
		return
	}

	if a.metrics != nil && r.URL.Path == a.metricsPath {
		a.metrics.ServeHTTP(w, r)
		return
	}

	body, err := a.readBody(r)
	if err != nil {
		a.writeJSON(w, handler.NewErrorResponse(
			uuid.New().String(),
			handler.CodeInvalidRequest,
			"Failed to read request body",
			err.Error(),
		))
		return
	}

	req := a.buildRequest(r, body)
	resp, err := a.handler.Handle(r.Context(), req)
	if resp.ID == "" {
		resp.ID = req.ID
	}

	a.writeResponse(w, resp, err)
}

func (a *HTTPAdapter) isHealthCheck(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/livez", "/ready", "/live":
		return a.handler.Config().EnableHealth
	}
	return false
}

func (a *HTTPAdapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := a.handler.Health(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "healthy",
		"worker": a.handler.Worker().Name(),
		"time":   time.Now().UTC(),
	})
}

func (a *HTTPAdapter) readBody(r *http.Request) ([]byte, error) {
	maxSize := a.handler.Config().MaxRequestSize
	if maxSize <= 0 {
		maxSize = defaultMaxRequestSize
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxSize)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	// bodyless requests (GET, HEAD) carry an empty JSON object
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}
	return body, nil
}

func (a *HTTPAdapter) buildRequest(r *http.Request, body []byte) handler.Request {
	requestID := extractRequestID(r.Header)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	return handler.Request{
		ID:        requestID,
		Source:    "http",
		Type:      a.extractRequestType(r),
		Payload:   json.RawMessage(body),
		Metadata:  a.extractMetadata(r),
		Timestamp: time.Now().UTC(),
	}
}

func extractRequestID(h http.Header) string {
	for _, header := range []string{"X-Request-ID", "X-Correlation-ID", "Request-ID"} {
		if id := h.Get(header); id != "" {
			return id
		}
	}
	return ""
}

func (a *HTTPAdapter) extractRequestType(r *http.Request) string {
	if reqType := r.Header.Get("X-Request-Type"); reqType != "" {
		return reqType
	}
	return handler.RequestTypeFromPath(r.URL.Path)
}

func (a *HTTPAdapter) extractMetadata(r *http.Request) map[string]string {
	metadata := map[string]string{
		"http_method": r.Method,
		"http_path":   r.URL.Path,
		"http_host":   r.Host,
	}

	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			metadata["query_"+key] = values[0]
		}
	}

	for _, header := range []string{"Content-Type", "Accept", "User-Agent", "X-Forwarded-For", "X-Real-IP", "Authorization"} {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		if header == "Authorization" {
			value = redactAuthorization(value)
		}
		metadata["header_"+strings.ToLower(strings.ReplaceAll(header, "-", "_"))] = value
	}

	if traceID := r.Header.Get("X-Trace-ID"); traceID != "" {
		metadata["trace_id"] = traceID
	}

	return metadata
}

func redactAuthorization(value string) string {
	if strings.HasPrefix(value, "Bearer ") {
		return "Bearer [REDACTED]"
	}
	return "[REDACTED]"
}

func (a *HTTPAdapter) writeResponse(w http.ResponseWriter, resp handler.Response, err error) {
	// middleware such as Timeout returns a typed response alongside its error
	if err != nil && resp.Error == nil {
		resp = handler.NewErrorResponse(resp.ID, handler.CodeInternal, "Request processing failed", err.Error())
	}

	for key, value := range resp.Metadata {
		w.Header().Set("X-"+key, value)
	}
	a.writeJSON(w, resp)
}

func (a *HTTPAdapter) writeJSON(w http.ResponseWriter, resp handler.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", resp.ID)
	w.WriteHeader(handler.HTTPStatus(resp))
	_ = json.NewEncoder(w).Encode(resp)
}

// Server returns an *http.Server for the adapter using the timeouts in cfg.
func (a *HTTPAdapter) Server(cfg config.HTTPConfig) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      a,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
