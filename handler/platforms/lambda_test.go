package platforms

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"healthdash/handler"
	handlermocks "healthdash/handler/mocks"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLambdaAdapter_RESTAPI(t *testing.T) {
	worker := new(handlermocks.MockWorker)
	ok, _ := handler.NewSuccessResponse("", map[string]string{"status": "healthy"})
	worker.On("Process", mock.Anything, mock.MatchedBy(func(req handler.Request) bool {
		return req.Type == "health" &&
			req.ID == "apigw-req-1" &&
			req.Source == handler.PlatformLambda &&
			string(req.Payload) == "{}" &&
			req.Metadata["api_stage"] == "prod"
	})).Return(ok, nil)

	adapter := NewLambdaAdapter(newTestHandler(worker), time.Second)

	resp, err := adapter.HandleRESTAPI(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodGet,
		Path:           "/api/health",
		RequestContext: events.APIGatewayProxyRequestContext{RequestID: "apigw-req-1", Stage: "prod"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "apigw-req-1", resp.Headers["X-Request-ID"])

	var body handler.Response
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.True(t, body.Success)
	worker.AssertExpectations(t)
}

func TestLambdaAdapter_HTTPAPI_Base64Body(t *testing.T) {
	worker := new(handlermocks.MockWorker)
	worker.On("Process", mock.Anything, mock.MatchedBy(func(req handler.Request) bool {
		return req.Type == "health.monitor" && string(req.Payload) == `{"verbose":true}`
	})).Return(handler.NewErrorResponse("", "HEALTH_ROUTE_HANDLER_ERROR", "Health route handler failed", "boom"), nil)

	adapter := NewLambdaAdapter(newTestHandler(worker), 0)

	event := events.APIGatewayV2HTTPRequest{
		Version:         "2.0",
		RawPath:         "/api/health/monitor",
		Headers:         map[string]string{"x-request-id": "client-id"},
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"verbose":true}`)),
		IsBase64Encoded: true,
	}
	event.RequestContext.HTTP.Method = http.MethodPost

	resp, err := adapter.HandleHTTPAPI(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "client-id", resp.Headers["X-Request-ID"])
	assert.Contains(t, resp.Body, "HEALTH_ROUTE_HANDLER_ERROR")
}

func TestLambdaAdapter_BadBase64(t *testing.T) {
	worker := new(handlermocks.MockWorker)
	adapter := NewLambdaAdapter(newTestHandler(worker), 0)

	resp, err := adapter.HandleRESTAPI(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/api/health",
		Body:            "!!not-base64!!",
		IsBase64Encoded: true,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, resp.Body, handler.CodeInvalidRequest)
	worker.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestLambdaAdapter_HandleEventDispatch(t *testing.T) {
	worker := handlermocks.NewMockWorker("health")
	ok, _ := handler.NewSuccessResponse("", nil)
	worker.ExpectRoute("/api/health", ok, nil)

	adapter := NewLambdaAdapter(newTestHandler(worker), 0)

	t.Run("rest api", func(t *testing.T) {
		out, err := adapter.HandleEvent(context.Background(), json.RawMessage(`{"httpMethod":"GET","path":"/api/health"}`))
		require.NoError(t, err)
		resp, isV1 := out.(events.APIGatewayProxyResponse)
		require.True(t, isV1)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("http api", func(t *testing.T) {
		out, err := adapter.HandleEvent(context.Background(), json.RawMessage(`{"version":"2.0","rawPath":"/api/health","requestContext":{"http":{"method":"GET"}}}`))
		require.NoError(t, err)
		resp, isV2 := out.(events.APIGatewayV2HTTPResponse)
		require.True(t, isV2)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := adapter.HandleEvent(context.Background(), json.RawMessage(`{"Records":[]}`))
		assert.ErrorIs(t, err, ErrUnsupportedEvent)

		_, err = adapter.HandleEvent(context.Background(), json.RawMessage(`not json`))
		assert.ErrorIs(t, err, ErrUnsupportedEvent)
	})
}
