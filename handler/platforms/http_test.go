package platforms

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"healthdash/config"
	"healthdash/handler"
	handlermocks "healthdash/handler/mocks"
	"healthdash/observability/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestHandler(worker *handlermocks.MockWorker) *handler.Handler {
	worker.On("Name").Return("health-worker").Maybe()
	return handler.NewFactory(worker, mocks.NewNopProvider()).
		WithRetryConfig(config.RetryConfig{}).
		WithRateLimitConfig(config.RateLimitConfig{}).
		CreateHTTP()
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) handler.Response {
	t.Helper()
	var resp handler.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHTTPAdapter_RoutesAPIPathToRequestType(t *testing.T) {
	worker := new(handlermocks.MockWorker)
	ok, _ := handler.NewSuccessResponse("", map[string]string{"status": "healthy"})
	worker.On("Process", mock.Anything, mock.MatchedBy(func(req handler.Request) bool {
		return req.Type == "health.monitor" &&
			string(req.Payload) == "{}" &&
			req.Source == "http" &&
			req.Metadata["http_method"] == http.MethodGet
	})).Return(ok, nil)

	adapter := NewHTTPAdapter(newTestHandler(worker))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health/monitor", nil)
	req.Header.Set("X-Request-ID", "req-42")
	adapter.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, rec.Header().Get("X-trace_id"))

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.JSONEq(t, `{"status":"healthy"}`, string(resp.Data))
	worker.AssertExpectations(t)
}

func TestHTTPAdapter_ErrorCodesMapToStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{"HEALTH_ROUTE_HANDLER_ERROR", http.StatusInternalServerError},
		{handler.CodeUnsupported, http.StatusNotFound},
		{handler.CodeTimeout, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			worker := new(handlermocks.MockWorker)
			worker.ExpectProcessAny(handler.NewErrorResponse("", tt.code, "failed", "details"), nil)

			rec := httptest.NewRecorder()
			NewHTTPAdapter(newTestHandler(worker)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.ID)
		})
	}
}

func TestHTTPAdapter_ProcessingErrorIsInternal(t *testing.T) {
	worker := new(handlermocks.MockWorker)
	worker.ExpectProcessAny(handler.Response{}, errors.New("boom"))

	rec := httptest.NewRecorder()
	NewHTTPAdapter(newTestHandler(worker)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/health", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, handler.CodeInternal, resp.Error.Code)
	assert.Equal(t, "boom", resp.Error.Details)
}

func TestHTTPAdapter_InvalidJSONBody(t *testing.T) {
	worker := new(handlermocks.MockWorker)

	rec := httptest.NewRecorder()
	NewHTTPAdapter(newTestHandler(worker)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/health", strings.NewReader(`{nope`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, handler.CodeValidation, decodeResponse(t, rec).Error.Code)
	worker.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestHTTPAdapter_BodyTooLarge(t *testing.T) {
	worker := new(handlermocks.MockWorker)
	worker.On("Name").Return("health-worker").Maybe()

	hcfg := config.DefaultHandlerConfig()
	hcfg.MaxRequestSize = 8
	h := handler.NewFactory(worker, mocks.NewNopProvider()).WithHandlerConfig(hcfg).CreateHTTP()

	rec := httptest.NewRecorder()
	NewHTTPAdapter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/health", strings.NewReader(`{"padding":"xxxxxxxx"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, handler.CodeInvalidRequest, decodeResponse(t, rec).Error.Code)
}

func TestHTTPAdapter_HealthEndpoints(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		worker := new(handlermocks.MockWorker)
		worker.ExpectHealth(nil)

		rec := httptest.NewRecorder()
		NewHTTPAdapter(newTestHandler(worker)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "health-worker", body["worker"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		worker := new(handlermocks.MockWorker)
		worker.ExpectHealth(errors.New("backend unreachable"))

		rec := httptest.NewRecorder()
		NewHTTPAdapter(newTestHandler(worker)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "backend unreachable")
	})
}

func TestHTTPAdapter_MetricsHandler(t *testing.T) {
	worker := new(handlermocks.MockWorker)
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})

	rec := httptest.NewRecorder()
	NewHTTPAdapter(newTestHandler(worker), WithMetricsHandler("/metrics", metrics)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
	worker.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestHTTPAdapter_RedactsAuthorization(t *testing.T) {
	worker := new(handlermocks.MockWorker)
	ok, _ := handler.NewSuccessResponse("", nil)
	worker.On("Process", mock.Anything, mock.MatchedBy(func(req handler.Request) bool {
		return req.Metadata["header_authorization"] == "Bearer [REDACTED]" &&
			req.Metadata["query_verbose"] == "1"
	})).Return(ok, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health?verbose=1", nil)
	req.Header.Set("Authorization", "Bearer secret-token")

	rec := httptest.NewRecorder()
	NewHTTPAdapter(newTestHandler(worker)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	worker.AssertExpectations(t)
}

func TestHTTPAdapter_Server(t *testing.T) {
	worker := new(handlermocks.MockWorker)
	cfg := config.DefaultHTTPConfig()
	cfg.Addr = ":9999"

	srv := NewHTTPAdapter(newTestHandler(worker)).Server(cfg)

	assert.Equal(t, ":9999", srv.Addr)
	assert.Equal(t, cfg.ReadTimeout, srv.ReadTimeout)
	assert.Equal(t, cfg.WriteTimeout, srv.WriteTimeout)
}
