package domain

import (
	"errors"
	"fmt"
)

// Repository error codes.
const (
	CodeAPIError        = "API_ERROR"
	CodeNetworkError    = "NETWORK_ERROR"
	CodeTimeoutError    = "TIMEOUT_ERROR"
	CodeInvalidResponse = "INVALID_RESPONSE"
	CodeMappingError    = "MAPPING_ERROR"
	CodeUnknownError    = "UNKNOWN_ERROR"
)

// Error is returned by every Repository implementation.
type Error struct {
	Code      string
	Message   string
	Err       error
	Retryable bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error. Timeout and network failures are
// retryable; everything else is not.
func NewError(code, message string, err error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Err:       err,
		Retryable: code == CodeTimeoutError || code == CodeNetworkError,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or
// UNKNOWN_ERROR.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeUnknownError
}

// IsRetryable reports whether err carries a retryable *Error.
func IsRetryable(err error) bool {
	var de *Error
	return errors.As(err, &de) && de.Retryable
}
