package httpcall

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindTimeout means the per-call timer fired before the exchange finished.
	KindTimeout Kind = iota + 1
	// KindCancelled means the caller's context ended first.
	KindCancelled
	// KindTransport means the exchange itself failed.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindCancelled:
		return "cancelled"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Sentinels matched by (*Error).Is, one per Kind.
var (
	ErrTimeout   = errors.New("httpcall: timed out")
	ErrCancelled = errors.New("httpcall: cancelled")
	ErrTransport = errors.New("httpcall: transport failure")

	// ErrBodyTooLarge is wrapped in a transport Error when a response body
	// exceeds the client's limit.
	ErrBodyTooLarge = errors.New("httpcall: response body too large")
)

// Error is the failure side of a Result.
type Error struct {
	Kind    Kind
	Method  string
	URL     string
	Timeout time.Duration

	// Err is the underlying cause: the transport error for KindTransport,
	// the context cause for KindCancelled and context.DeadlineExceeded for
	// KindTimeout.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("%s %s: timed out after %s", e.Method, e.URL, e.Timeout)
	case KindCancelled:
		return fmt.Sprintf("%s %s: cancelled: %v", e.Method, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrCancelled:
		return e.Kind == KindCancelled
	case ErrTransport:
		return e.Kind == KindTransport
	}
	return false
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
