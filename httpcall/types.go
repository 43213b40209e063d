package httpcall

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Request describes one outbound exchange.
type Request struct {
	// Method defaults to GET.
	Method string
	URL    string
	Header http.Header
	// Body is sent verbatim when non-nil.
	Body []byte
	// Timeout bounds the whole exchange including reading the body.
	// Zero uses the client default.
	Timeout time.Duration
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// StatusText returns the reason phrase, e.g. "Not Found".
func (r *Response) StatusText() string {
	if text := strings.TrimPrefix(r.Status, strconv.Itoa(r.StatusCode)+" "); text != "" && text != r.Status {
		return text
	}
	return http.StatusText(r.StatusCode)
}

// DecodeJSON unmarshals the body into v.
func (r *Response) DecodeJSON(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("decode response: empty body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Result is either a Success holding a Response or a Failure holding an
// Error. The zero Result is neither and should not be used.
type Result struct {
	resp *Response
	err  *Error
}

// Success wraps a completed exchange.
func Success(resp *Response) Result {
	return Result{resp: resp}
}

// Failure wraps a failed exchange.
func Failure(err *Error) Result {
	return Result{err: err}
}

// IsSuccess reports whether the exchange completed.
func (r Result) IsSuccess() bool {
	return r.err == nil && r.resp != nil
}

// Response returns the response of a Success, or nil.
func (r Result) Response() *Response {
	return r.resp
}

// Err returns the error of a Failure, or nil.
func (r Result) Err() *Error {
	return r.err
}

// Get adapts the Result to the usual Go pair. The error is a nil
// interface on success.
func (r Result) Get() (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.resp, nil
}

// Match calls exactly one of the two functions.
func (r Result) Match(onSuccess func(*Response), onFailure func(*Error)) {
	if r.err != nil {
		onFailure(r.err)
		return
	}
	onSuccess(r.resp)
}
