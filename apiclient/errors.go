package apiclient

import (
	"fmt"

	"healthdash/httpcall"
)

// CodeServerActionError is the code carried by every APIError.
const CodeServerActionError = "SERVER_ACTION_ERROR"

// APIError is returned by the JSON helpers. It serialises to the error body
// the dashboard hands to its callers.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`

	// StatusCode is the upstream status when a response was received.
	StatusCode int   `json:"-"`
	Err        error `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Kind returns the httpcall failure kind behind e, or 0 when the upstream
// answered.
func (e *APIError) Kind() httpcall.Kind {
	return httpcall.KindOf(e.Err)
}

func statusError(resp *httpcall.Response) *APIError {
	return &APIError{
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.StatusText()),
		Code:       CodeServerActionError,
		StatusCode: resp.StatusCode,
	}
}

func callError(err *httpcall.Error) *APIError {
	return &APIError{
		Message: err.Error(),
		Code:    CodeServerActionError,
		Details: err.Kind.String(),
		Err:     err,
	}
}

func wrapError(msg string, err error) *APIError {
	return &APIError{
		Message: fmt.Sprintf("%s: %v", msg, err),
		Code:    CodeServerActionError,
		Err:     err,
	}
}
