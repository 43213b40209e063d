// Package apiclient talks to the upstream health API through httpcall,
// adding base URL handling, default headers and JSON helpers.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"healthdash/httpcall"
	"healthdash/observability/types"
)

// SimpleHealthPath is the upstream liveness endpoint used by Ping.
const SimpleHealthPath = "/api/health/simple"

// Options customise a single call.
type Options struct {
	Method  string
	Header  http.Header
	Body    []byte
	Timeout time.Duration
}

// Client calls the upstream API.
type Client struct {
	cfg     Config
	http    *httpcall.Client
	logger  types.Logger
	metrics types.Metrics
}

// New creates a Client. Extra httpcall options are applied after the ones
// derived from cfg.
func New(cfg Config, logger types.Logger, metrics types.Metrics, opts ...httpcall.Option) *Client {
	base := []httpcall.Option{
		httpcall.WithDefaultTimeout(cfg.Timeout),
		httpcall.WithMaxBodyBytes(cfg.MaxBodyBytes),
		httpcall.WithUserAgent(cfg.UserAgent),
	}
	return &Client{
		cfg:     cfg,
		http:    httpcall.New(append(base, opts...)...),
		logger:  logger,
		metrics: metrics,
	}
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Call issues one timed request to endpoint (relative to the base URL).
// When a body is present and no Content-Type was given, JSON is assumed.
func (c *Client) Call(ctx context.Context, endpoint string, opts Options) httpcall.Result {
	header := c.cfg.Headers.Clone()
	if header == nil {
		header = http.Header{}
	}
	for k, v := range opts.Header {
		header[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}
	if opts.Body != nil && header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	c.metrics.StartOperation(endpoint)
	defer c.metrics.EndOperation(endpoint)
	start := time.Now()

	res := c.http.Call(ctx, httpcall.Request{
		Method:  method,
		URL:     JoinURL(c.cfg.BaseURL, endpoint),
		Header:  header,
		Body:    opts.Body,
		Timeout: opts.Timeout,
	})

	c.metrics.RecordDuration(endpoint, time.Since(start).Seconds())
	res.Match(
		func(resp *httpcall.Response) {
			c.metrics.RecordResponseSize(endpoint, int64(len(resp.Body)))
			if resp.OK() {
				c.metrics.RecordSuccess(endpoint)
			} else {
				c.metrics.RecordError(endpoint, "http_status")
			}
			c.logger.Debug(ctx, "Upstream call completed", types.Fields{
				"method":      method,
				"endpoint":    endpoint,
				"status_code": resp.StatusCode,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		},
		func(err *httpcall.Error) {
			c.metrics.RecordError(endpoint, err.Kind.String())
			c.logger.Warn(ctx, "Upstream call failed", types.Fields{
				"method":      method,
				"endpoint":    endpoint,
				"error_kind":  err.Kind.String(),
				"error":       err.Error(),
				"duration_ms": time.Since(start).Milliseconds(),
			})
		},
	)

	return res
}

// GetJSON fetches endpoint and decodes the JSON body into out.
// Errors are always *APIError.
func (c *Client) GetJSON(ctx context.Context, endpoint string, out any) error {
	return c.doJSON(ctx, http.MethodGet, endpoint, nil, out)
}

// PostJSON sends in as JSON and decodes the reply into out (may be nil).
func (c *Client) PostJSON(ctx context.Context, endpoint string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, endpoint, in, out)
}

// PutJSON sends in as JSON and decodes the reply into out (may be nil).
func (c *Client) PutJSON(ctx context.Context, endpoint string, in, out any) error {
	return c.doJSON(ctx, http.MethodPut, endpoint, in, out)
}

// Delete issues a DELETE and decodes the reply into out (may be nil).
func (c *Client) Delete(ctx context.Context, endpoint string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, endpoint, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	opts := Options{Method: method}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return wrapError("encode request", err)
		}
		opts.Body = body
	}

	resp, callErr := c.Call(ctx, endpoint, opts).Get()
	if callErr != nil {
		return callError(callErr.(*httpcall.Error))
	}
	if !resp.OK() {
		apiErr := statusError(resp)
		if len(resp.Body) > 0 {
			apiErr.Details = string(resp.Body)
		}
		return apiErr
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := resp.DecodeJSON(out); err != nil {
		return wrapError("invalid response", err)
	}
	return nil
}

// Ping checks the upstream liveness endpoint. Any failure, non-2xx status
// or a reported status other than "healthy" is an error.
func (c *Client) Ping(ctx context.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.GetJSON(ctx, SimpleHealthPath, &body); err != nil {
		return err
	}
	if body.Status != "" && body.Status != "healthy" {
		return fmt.Errorf("upstream reports status %q", body.Status)
	}
	return nil
}
