package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"healthdash/httpcall"
	"healthdash/observability/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *mocks.MockMetrics) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	m := mocks.NewNopMetrics()
	c := New(Config{
		BaseURL: srv.URL + "/",
		Timeout: time.Second,
		Headers: http.Header{"Accept": []string{"application/json"}, "X-Client": []string{"default"}},
	}, mocks.NewNopLogger(), m)
	return c, m
}

func TestClient_CallMergesHeadersAndSetsJSONContentType(t *testing.T) {
	seen := make(chan *http.Request, 1)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Clone(context.Background())
		w.WriteHeader(http.StatusOK)
	})

	res := c.Call(context.Background(), "/api/items", Options{
		Method: http.MethodPost,
		Header: http.Header{"x-client": []string{"override"}},
		Body:   []byte(`{"a":1}`),
	})

	require.True(t, res.IsSuccess())
	r := <-seen
	got := r.Header
	assert.Equal(t, "/api/items", r.URL.Path)
	assert.Equal(t, "override", got.Get("X-Client"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
}

func TestClient_CallKeepsExplicitContentType(t *testing.T) {
	contentType := make(chan string, 1)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType <- r.Header.Get("Content-Type")
	})

	c.Call(context.Background(), "/upload", Options{
		Method: http.MethodPut,
		Header: http.Header{"Content-Type": []string{"text/plain"}},
		Body:   []byte("hi"),
	})

	assert.Equal(t, "text/plain", <-contentType)
}

func TestClient_CallWithoutBodyHasNoContentType(t *testing.T) {
	contentType := make(chan string, 1)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType <- r.Header.Get("Content-Type")
	})

	c.Call(context.Background(), "/api/health", Options{})

	assert.Empty(t, <-contentType)
}

func TestClient_GetJSON(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"status":"healthy","timestamp":"2024-01-01T00:00:00Z"}`))
	})

	var out map[string]string
	require.NoError(t, c.GetJSON(context.Background(), "/api/health", &out))
	assert.Equal(t, "healthy", out["status"])
	m.AssertCalled(t, "RecordSuccess", "/api/health")
}

func TestClient_NonSuccessStatusBecomesAPIError(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
	})

	err := c.GetJSON(context.Background(), "/api/missing", nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "HTTP 404: Not Found", apiErr.Message)
	assert.Equal(t, CodeServerActionError, apiErr.Code)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, `{"detail":"Not Found"}`, apiErr.Details)
	assert.Equal(t, httpcall.Kind(0), apiErr.Kind())
	m.AssertCalled(t, "RecordError", "/api/missing", "http_status")

	body, mErr := json.Marshal(apiErr)
	require.NoError(t, mErr)
	assert.JSONEq(t, `{"message":"HTTP 404: Not Found","code":"SERVER_ACTION_ERROR","details":"{\"detail\":\"Not Found\"}"}`, string(body))
}

func TestClient_DecodeFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	var out map[string]any
	err := c.GetJSON(context.Background(), "/api/health", &out)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Message, "invalid response")
}

func TestClient_PostPutDelete(t *testing.T) {
	type seen struct{ method, body string }
	calls := make(chan seen, 3)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls <- seen{r.Method, string(b)}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	ctx := context.Background()

	var out struct{ OK bool }
	require.NoError(t, c.PostJSON(ctx, "/items", map[string]int{"n": 1}, &out))
	assert.True(t, out.OK)
	require.NoError(t, c.PutJSON(ctx, "/items/1", map[string]int{"n": 2}, nil))
	require.NoError(t, c.Delete(ctx, "/items/1", nil))

	assert.Equal(t, seen{http.MethodPost, `{"n":1}`}, <-calls)
	assert.Equal(t, seen{http.MethodPut, `{"n":2}`}, <-calls)
	assert.Equal(t, seen{http.MethodDelete, ""}, <-calls)
}

func TestClient_EncodeFailure(t *testing.T) {
	c, _ := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("request must not be sent")
	})

	err := c.PostJSON(context.Background(), "/items", map[string]any{"ch": make(chan int)}, nil)
	assert.ErrorContains(t, err, "encode request")
}

func TestClient_TimeoutSurfacesKind(t *testing.T) {
	release := make(chan struct{})
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	res := c.Call(context.Background(), "/api/health", Options{Timeout: 20 * time.Millisecond})

	require.False(t, res.IsSuccess())
	assert.Equal(t, httpcall.KindTimeout, res.Err().Kind)
	m.AssertCalled(t, "RecordError", "/api/health", "timeout")

	err := c.GetJSON(context.Background(), "/api/health", nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.ErrorIs(t, err, httpcall.ErrTimeout)
	assert.Equal(t, "timeout", apiErr.Details)
}

func TestClient_Ping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "healthy", status: 200, body: `{"status":"healthy"}`},
		{name: "no status field", status: 200, body: `{}`},
		{name: "degraded", status: 200, body: `{"status":"degraded"}`, wantErr: true},
		{name: "server error", status: 500, body: `oops`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, SimpleHealthPath, r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := c.Ping(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClient_MetricsBracketEveryCall(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	c.Call(context.Background(), "/api/health", Options{})

	m.AssertCalled(t, "StartOperation", "/api/health")
	m.AssertCalled(t, "EndOperation", "/api/health")
	m.AssertCalled(t, "RecordDuration", "/api/health", mock.AnythingOfType("float64"))
}
