package httpcall

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Defaults used when the caller passes zero values.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxBodyBytes = 1 << 20
)

// Doer sends one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// stopper is the part of *time.Timer a call needs.
type stopper interface {
	Stop() bool
}

// Client issues timed calls. It is safe for concurrent use; every call owns
// its own timer and context observer.
type Client struct {
	doer           Doer
	defaultTimeout time.Duration
	maxBodyBytes   int64
	userAgent      string

	afterFunc func(d time.Duration, f func()) stopper
	observe   func(ctx context.Context, f func()) (stop func() bool)
}

// Option configures a Client.
type Option func(*Client)

// WithDoer replaces the transport. The default is an *http.Client with no
// client-level timeout, since every call carries its own.
func WithDoer(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithDefaultTimeout sets the timeout used by requests with Timeout == 0.
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

// WithMaxBodyBytes caps how much of a response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// WithUserAgent sets User-Agent on requests that do not carry one.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		doer:           &http.Client{},
		defaultTimeout: DefaultTimeout,
		maxBodyBytes:   DefaultMaxBodyBytes,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		observe: context.AfterFunc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call performs req once.
//
// ctx is the external cancellation signal; if it is already done no request
// is sent. Otherwise a single cancellation source governs the exchange and
// is fed by two triggers: the per-call timer and ctx. Whichever fires first
// determines the failure kind. Both triggers are released before Call
// returns, on every path.
func (c *Client) Call(ctx context.Context, req Request) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}

	fail := func(kind Kind, err error) Result {
		return Failure(&Error{Kind: kind, Method: method, URL: req.URL, Timeout: timeout, Err: err})
	}

	if ctx.Err() != nil {
		return fail(KindCancelled, context.Cause(ctx))
	}

	// Detach from ctx's cancellation (values are kept) so that the only way
	// callCtx ends is through one of the tagged triggers below.
	callCtx, cancel := context.WithCancelCause(context.WithoutCancel(ctx))
	defer cancel(nil)

	stopObserving := c.observe(ctx, func() { cancel(ErrCancelled) })
	defer stopObserving()

	timer := c.afterFunc(timeout, func() { cancel(ErrTimeout) })
	defer timer.Stop()

	resp, err := c.exchange(callCtx, method, req)
	if err == nil {
		return Success(resp)
	}

	switch cause := context.Cause(callCtx); {
	case errors.Is(cause, ErrTimeout):
		return fail(KindTimeout, context.DeadlineExceeded)
	case errors.Is(cause, ErrCancelled):
		return fail(KindCancelled, context.Cause(ctx))
	default:
		return fail(KindTransport, err)
	}
}

// exchange sends the request and reads the whole body under ctx.
func (c *Client) exchange(ctx context.Context, method string, req Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if req.Header != nil {
		httpReq.Header = req.Header.Clone()
	}
	if c.userAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	httpResp, err := c.doer.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if httpResp.Body == nil {
		httpResp.Body = http.NoBody
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > c.maxBodyBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, c.maxBodyBytes)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}
