package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Error codes understood by every adapter.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeUnsupported    = "UNSUPPORTED_REQUEST"
	CodeRateLimited    = "RATE_LIMITED"
	CodeTimeout        = "TIMEOUT"
	CodeCancelled      = "CANCELLED"
	CodeUnavailable    = "SERVICE_UNAVAILABLE"
	CodeNetwork        = "NETWORK_ERROR"
	CodeInternal       = "INTERNAL_ERROR"
)

// Request is a platform-agnostic inbound request.
type Request struct {
	// ID is a unique identifier for the request (for tracing)
	ID string `json:"id"`

	// Source is the runtime the request came from ("http", "lambda").
	Source string `json:"source"`

	// Type routes the request inside the worker, e.g. "health.monitor".
	Type string `json:"type"`

	// Payload contains the request body as raw JSON
	Payload json.RawMessage `json:"payload"`

	// Metadata carries headers and transport attributes.
	Metadata map[string]string `json:"metadata,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Response is a platform-agnostic outbound response.
type Response struct {
	// ID correlates with the request ID
	ID string `json:"id"`

	Success bool `json:"success"`

	// Data contains the response payload (only if Success is true)
	Data json.RawMessage `json:"data,omitempty"`

	// Error contains error information if Success is false
	Error *ErrorResponse `json:"error,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`

	Duration time.Duration `json:"duration,omitempty"`
}

// ErrorResponse is the error body shared by all workers.
type ErrorResponse struct {
	// Code is a machine-readable error code (e.g., "VALIDATION_ERROR")
	Code string `json:"code"`

	Message string `json:"message"`

	Details string `json:"details,omitempty"`

	Retryable bool `json:"retryable,omitempty"`
}

// NewRequest creates a new request with generated ID and timestamp.
func NewRequest(requestType string, payload interface{}) (Request, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return Request{}, err
	}

	return Request{
		ID:        uuid.New().String(),
		Type:      requestType,
		Payload:   payloadBytes,
		Metadata:  make(map[string]string),
		Timestamp: time.Now().UTC(),
	}, nil
}

// Unmarshal decodes the request payload into v.
func (r *Request) Unmarshal(v interface{}) error {
	return json.Unmarshal(r.Payload, v)
}

// Marshal encodes v as the response data.
func (r *Response) Marshal(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.Data = data
	return nil
}

// NewErrorResponse creates an error response. Retryable is derived from the
// code; use NewRetryableErrorResponse to set it explicitly.
func NewErrorResponse(id string, code string, message string, details string) Response {
	return NewRetryableErrorResponse(id, code, message, details, isRetryableCode(code))
}

// NewRetryableErrorResponse creates an error response with an explicit
// retryable flag.
func NewRetryableErrorResponse(id, code, message, details string, retryable bool) Response {
	return Response{
		ID:      id,
		Success: false,
		Error: &ErrorResponse{
			Code:      code,
			Message:   message,
			Details:   details,
			Retryable: retryable,
		},
		ProcessedAt: time.Now().UTC(),
	}
}

// NewSuccessResponse creates a success response carrying data as JSON.
func NewSuccessResponse(id string, data interface{}) (Response, error) {
	resp := Response{
		ID:          id,
		Success:     true,
		ProcessedAt: time.Now().UTC(),
		Metadata:    make(map[string]string),
	}

	if data != nil {
		if err := resp.Marshal(data); err != nil {
			return Response{}, err
		}
	}

	return resp, nil
}

func isRetryableCode(code string) bool {
	switch code {
	case CodeTimeout, CodeNetwork, CodeRateLimited, CodeUnavailable:
		return true
	}
	return false
}

// SetMetadata adds or updates metadata on the request.
func (r *Request) SetMetadata(key, value string) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]string)
	}
	r.Metadata[key] = value
}

// GetMetadata retrieves metadata from the request.
func (r *Request) GetMetadata(key string) (string, bool) {
	if r.Metadata == nil {
		return "", false
	}
	val, ok := r.Metadata[key]
	return val, ok
}

// HTTPStatus maps a Response to the status code both runtimes return.
func HTTPStatus(resp Response) int {
	if resp.Success {
		return http.StatusOK
	}
	if resp.Error == nil {
		return http.StatusInternalServerError
	}

	switch resp.Error.Code {
	case CodeValidation, CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeNotFound, CodeUnsupported:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeCancelled:
		// nginx's "client closed request"
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// RequestTypeFromPath derives a request type from a URL path. The "/api"
// prefix is dropped and the remaining segments are joined with dots:
// "/api/health/monitor" becomes "health.monitor".
func RequestTypeFromPath(path string) string {
	path = strings.Trim(path, "/")
	if path == "api" {
		return ""
	}
	path = strings.TrimPrefix(path, "api/")

	var parts []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, ".")
}
