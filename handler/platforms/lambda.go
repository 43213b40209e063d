package platforms

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"healthdash/handler"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"
)

// ErrUnsupportedEvent is returned for Lambda payloads that are not API
// Gateway proxy events.
var ErrUnsupportedEvent = errors.New("unsupported event type")

// LambdaAdapter serves a handler behind API Gateway REST (v1) and HTTP (v2)
// proxy integrations.
type LambdaAdapter struct {
	handler *handler.Handler
	timeout time.Duration
}

// NewLambdaAdapter creates a new Lambda adapter. A positive timeout bounds
// each invocation in addition to the handler's own timeout.
func NewLambdaAdapter(h *handler.Handler, timeout time.Duration) *LambdaAdapter {
	return &LambdaAdapter{handler: h, timeout: timeout}
}

// Start hands control to the Lambda runtime.
func (a *LambdaAdapter) Start() {
	lambda.Start(a.HandleEvent)
}

type eventProbe struct {
	Version        string `json:"version"`
	HTTPMethod     string `json:"httpMethod"`
	RequestContext struct {
		HTTP struct {
			Method string `json:"method"`
		} `json:"http"`
	} `json:"requestContext"`
}

// HandleEvent detects the proxy event version and dispatches it.
func (a *LambdaAdapter) HandleEvent(ctx context.Context, event json.RawMessage) (interface{}, error) {
	var probe eventProbe
	if err := json.Unmarshal(event, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedEvent, err)
	}

	switch {
	case probe.Version == "2.0" || probe.RequestContext.HTTP.Method != "":
		var req events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(event, &req); err != nil {
			return nil, fmt.Errorf("decode http api event: %w", err)
		}
		return a.HandleHTTPAPI(ctx, req)

	case probe.HTTPMethod != "":
		var req events.APIGatewayProxyRequest
		if err := json.Unmarshal(event, &req); err != nil {
			return nil, fmt.Errorf("decode rest api event: %w", err)
		}
		return a.HandleRESTAPI(ctx, req)
	}

	return nil, ErrUnsupportedEvent
}

// HandleRESTAPI serves an API Gateway REST proxy event.
func (a *LambdaAdapter) HandleRESTAPI(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body, err := decodeBody(event.Body, event.IsBase64Encoded)
	if err != nil {
		status, headers, out := a.encode(invalidBody(err), nil)
		return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: out}, nil
	}

	metadata := map[string]string{
		"http_method":       event.HTTPMethod,
		"http_path":         event.Path,
		"lambda_request_id": event.RequestContext.RequestID,
		"api_stage":         event.RequestContext.Stage,
	}
	for k, v := range event.QueryStringParameters {
		metadata["query_"+k] = v
	}

	req := a.buildRequest(event.Headers, event.Path, body, metadata, event.RequestContext.RequestID)
	resp, err := a.handle(ctx, req)
	status, headers, out := a.encode(resp, err)

	return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: out}, nil
}

// HandleHTTPAPI serves an API Gateway HTTP API (payload format 2.0) event.
func (a *LambdaAdapter) HandleHTTPAPI(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	body, err := decodeBody(event.Body, event.IsBase64Encoded)
	if err != nil {
		status, headers, out := a.encode(invalidBody(err), nil)
		return events.APIGatewayV2HTTPResponse{StatusCode: status, Headers: headers, Body: out}, nil
	}

	metadata := map[string]string{
		"http_method":       event.RequestContext.HTTP.Method,
		"http_path":         event.RawPath,
		"lambda_request_id": event.RequestContext.RequestID,
		"api_stage":         event.RequestContext.Stage,
	}
	for k, v := range event.QueryStringParameters {
		metadata["query_"+k] = v
	}

	req := a.buildRequest(event.Headers, event.RawPath, body, metadata, event.RequestContext.RequestID)
	resp, err := a.handle(ctx, req)
	status, headers, out := a.encode(resp, err)

	return events.APIGatewayV2HTTPResponse{StatusCode: status, Headers: headers, Body: out}, nil
}

func (a *LambdaAdapter) handle(ctx context.Context, req handler.Request) (handler.Response, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.handler.Handle(ctx, req)
	if resp.ID == "" {
		resp.ID = req.ID
	}
	return resp, err
}

func (a *LambdaAdapter) buildRequest(headers map[string]string, path string, body []byte, metadata map[string]string, fallbackID string) handler.Request {
	h := make(http.Header, len(headers))
	for k, v := range headers {
		h.Set(k, v)
	}

	requestID := extractRequestID(h)
	if requestID == "" {
		requestID = fallbackID
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}

	requestType := h.Get("X-Request-Type")
	if requestType == "" {
		requestType = handler.RequestTypeFromPath(path)
	}

	if traceID := h.Get("X-Trace-ID"); traceID != "" {
		metadata["trace_id"] = traceID
	}
	if auth := h.Get("Authorization"); auth != "" {
		metadata["header_authorization"] = redactAuthorization(auth)
	}
	if ua := h.Get("User-Agent"); ua != "" {
		metadata["header_user_agent"] = ua
	}

	return handler.Request{
		ID:        requestID,
		Source:    handler.PlatformLambda,
		Type:      requestType,
		Payload:   json.RawMessage(body),
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
}

func (a *LambdaAdapter) encode(resp handler.Response, err error) (int, map[string]string, string) {
	if err != nil && resp.Error == nil {
		resp = handler.NewErrorResponse(resp.ID, handler.CodeInternal, "Request processing failed", err.Error())
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"X-Request-ID": resp.ID,
	}
	for key, value := range resp.Metadata {
		headers["X-"+key] = value
	}

	out, mErr := json.Marshal(resp)
	if mErr != nil {
		return http.StatusInternalServerError, headers, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"failed to encode response"}}`
	}
	return handler.HTTPStatus(resp), headers, string(out)
}

func decodeBody(body string, isBase64 bool) ([]byte, error) {
	raw := []byte(body)
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("decode base64 body: %w", err)
		}
		raw = decoded
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		raw = []byte("{}")
	}
	return raw, nil
}

func invalidBody(err error) handler.Response {
	return handler.NewErrorResponse(
		uuid.New().String(),
		handler.CodeInvalidRequest,
		"Failed to read request body",
		err.Error(),
	)
}
