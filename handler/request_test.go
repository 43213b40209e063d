package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	payload := struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}{Name: "test", Value: 42}

	req, err := NewRequest("health.monitor", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, "health.monitor", req.Type)
	assert.NotNil(t, req.Metadata)
	assert.NotZero(t, req.Timestamp)

	var decoded map[string]interface{}
	require.NoError(t, req.Unmarshal(&decoded))
	assert.Equal(t, "test", decoded["name"])
	assert.Equal(t, float64(42), decoded["value"])
}

func TestNewRequest_UnmarshalablePayload(t *testing.T) {
	_, err := NewRequest("bad", make(chan int))
	assert.Error(t, err)
}

func TestNewSuccessResponse(t *testing.T) {
	resp, err := NewSuccessResponse("req-1", map[string]string{"status": "healthy"})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "req-1", resp.ID)
	assert.Nil(t, resp.Error)
	assert.JSONEq(t, `{"status":"healthy"}`, string(resp.Data))

	empty, err := NewSuccessResponse("req-2", nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Data)
}

func TestNewErrorResponse_RetryableByCode(t *testing.T) {
	tests := []struct {
		code      string
		retryable bool
	}{
		{CodeTimeout, true},
		{CodeNetwork, true},
		{CodeRateLimited, true},
		{CodeUnavailable, true},
		{CodeValidation, false},
		{CodeInternal, false},
		{"HEALTH_ROUTE_HANDLER_ERROR", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			resp := NewErrorResponse("id", tt.code, "msg", "details")
			require.NotNil(t, resp.Error)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.retryable, resp.Error.Retryable)
		})
	}

	forced := NewRetryableErrorResponse("id", CodeInternal, "msg", "", true)
	assert.True(t, forced.Error.Retryable)
}

func TestRequestMetadata(t *testing.T) {
	var req Request

	_, ok := req.GetMetadata("missing")
	assert.False(t, ok)

	req.SetMetadata("trace_id", "abc")
	v, ok := req.GetMetadata("trace_id")
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestResponse_JSONShape(t *testing.T) {
	resp := NewErrorResponse("id-1", CodeTimeout, "Request processing timed out", "Exceeded timeout of 1s")

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")

	errBody := decoded["error"].(map[string]interface{})
	assert.Equal(t, CodeTimeout, errBody["code"])
	assert.Equal(t, true, errBody["retryable"])
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want int
	}{
		{"success", Response{Success: true}, http.StatusOK},
		{"failure without error body", Response{}, http.StatusInternalServerError},
		{"validation", NewErrorResponse("", CodeValidation, "", ""), http.StatusBadRequest},
		{"invalid request", NewErrorResponse("", CodeInvalidRequest, "", ""), http.StatusBadRequest},
		{"unsupported", NewErrorResponse("", CodeUnsupported, "", ""), http.StatusNotFound},
		{"rate limited", NewErrorResponse("", CodeRateLimited, "", ""), http.StatusTooManyRequests},
		{"timeout", NewErrorResponse("", CodeTimeout, "", ""), http.StatusGatewayTimeout},
		{"unavailable", NewErrorResponse("", CodeUnavailable, "", ""), http.StatusServiceUnavailable},
		{"cancelled", NewErrorResponse("", CodeCancelled, "", ""), 499},
		{"domain failure", NewErrorResponse("", "HEALTH_ROUTE_HANDLER_ERROR", "", ""), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.resp))
		})
	}
}

func TestRequestTypeFromPath(t *testing.T) {
	tests := map[string]string{
		"/api/health":          "health",
		"/api/health/":         "health",
		"/api/health/monitor":  "health.monitor",
		"/api//health//detail": "health.detail",
		"/status":              "status",
		"/api":                 "",
		"/":                    "",
		"":                     "",
	}

	for path, want := range tests {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, want, RequestTypeFromPath(path))
		})
	}
}
