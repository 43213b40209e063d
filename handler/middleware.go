package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"runtime/debug"
	"time"

	"healthdash/config"
	"healthdash/observability"
	"healthdash/observability/types"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type spanKey struct{}

// LoggingMiddleware adds structured logging to request processing
func LoggingMiddleware(provider observability.Provider) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			logger := provider.Logger("handler")
			platform, _ := ctx.Value(platformKey).(string)

			requestLogger := logger.WithFields(types.Fields{
				"type":     req.Type,
				"source":   req.Source,
				"worker":   WorkerName(ctx),
				"platform": platform,
			})

			requestLogger.Info(ctx, "Processing request", types.Fields{
				"payload_size": len(req.Payload),
			})

			start := time.Now()
			resp, err := next(ctx, req)
			duration := time.Since(start)

			switch {
			case err != nil:
				requestLogger.Error(ctx, "Request failed with error", err, types.Fields{
					"duration_ms": duration.Milliseconds(),
				})
			case !resp.Success && resp.Error != nil:
				requestLogger.Warn(ctx, "Request completed with failure", types.Fields{
					"error_code":  resp.Error.Code,
					"error_msg":   resp.Error.Message,
					"duration_ms": duration.Milliseconds(),
				})
			default:
				requestLogger.Info(ctx, "Request completed successfully", types.Fields{
					"duration_ms": duration.Milliseconds(),
				})
			}

			resp.Duration = duration
			return resp, err
		}
	}
}

// MetricsMiddleware records per-request-type outcome, latency and concurrency.
func MetricsMiddleware(provider observability.Provider) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			metrics := provider.Metrics("handler")

			operation := req.Type
			if operation == "" {
				operation = "unknown"
			}

			metrics.StartOperation(operation)
			defer metrics.EndOperation(operation)

			start := time.Now()
			resp, err := next(ctx, req)
			metrics.RecordDuration(operation, time.Since(start).Seconds())

			switch {
			case err != nil:
				metrics.RecordError(operation, "processing_error")
			case !resp.Success:
				errorType := "unknown_error"
				if resp.Error != nil {
					errorType = resp.Error.Code
				}
				metrics.RecordError(operation, errorType)
			default:
				metrics.RecordSuccess(operation)
				metrics.RecordResponseSize(operation, int64(len(resp.Data)))
			}

			return resp, err
		}
	}
}

// RecoveryMiddleware recovers from panics and returns an error response.
// It should be the outermost layer.
func RecoveryMiddleware(provider observability.Provider) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (resp Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					provider.Logger("handler").Error(ctx, "Panic recovered", fmt.Errorf("%v", r), types.Fields{
						"worker": WorkerName(ctx),
						"stack":  string(debug.Stack()),
					})
					provider.Metrics("handler").RecordError("panic", "panic_recovered")

					// panic details stay in the logs
					resp = NewErrorResponse(req.ID, CodeInternal, "An internal error occurred", "")
					err = fmt.Errorf("panic recovered: %v", r)
				}
			}()

			return next(ctx, req)
		}
	}
}

// TracingMiddleware ensures each request carries a trace ID and a fresh span ID.
func TracingMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			traceID := extractTraceID(req)
			if traceID == "" {
				traceID = uuid.New().String()
			}
			spanID := uuid.New().String()

			ctx = context.WithValue(ctx, types.TraceIDKey, traceID)
			ctx = context.WithValue(ctx, spanKey{}, spanID)

			req.SetMetadata("trace_id", traceID)
			req.SetMetadata("span_id", spanID)

			resp, err := next(ctx, req)

			if resp.Metadata == nil {
				resp.Metadata = make(map[string]string)
			}
			resp.Metadata["trace_id"] = traceID
			resp.Metadata["span_id"] = spanID

			return resp, err
		}
	}
}

// SpanID returns the span ID set by TracingMiddleware.
func SpanID(ctx context.Context) string {
	id, _ := ctx.Value(spanKey{}).(string)
	return id
}

// TimeoutMiddleware bounds request processing. On expiry it returns a
// TIMEOUT response together with the context error; the inner handler keeps
// running until it observes the cancelled context.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			type result struct {
				resp Response
				err  error
			}
			resultChan := make(chan result, 1)

			go func() {
				resp, err := next(timeoutCtx, req)
				resultChan <- result{resp, err}
			}()

			select {
			case res := <-resultChan:
				return res.resp, res.err

			case <-timeoutCtx.Done():
				if ctx.Err() != nil {
					return NewErrorResponse(req.ID, CodeCancelled, "Request cancelled", ""), ctx.Err()
				}
				return NewErrorResponse(
					req.ID,
					CodeTimeout,
					"Request processing timed out",
					fmt.Sprintf("Exceeded timeout of %v", timeout),
				), timeoutCtx.Err()
			}
		}
	}
}

// RateLimitMiddleware rejects requests beyond a token-bucket rate with
// RATE_LIMITED. One limiter is shared by every request through the handler.
func RateLimitMiddleware(cfg config.RateLimitConfig) Middleware {
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			if !limiter.Allow() {
				return NewErrorResponse(
					req.ID,
					CodeRateLimited,
					"Too many requests",
					fmt.Sprintf("limit is %.2f requests/s with burst %d", cfg.RequestsPerSecond, cfg.Burst),
				), nil
			}
			return next(ctx, req)
		}
	}
}

// RetryMiddleware repeats transient failures with exponential backoff.
func RetryMiddleware(cfg *config.RetryConfig) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			var lastResp Response
			var lastErr error

			for attempt := 0; attempt <= cfg.MaxAttempts; attempt++ {
				attemptCtx := context.WithValue(ctx, attemptKey, attempt)

				resp, err := next(attemptCtx, req)
				if err == nil && resp.Success {
					return resp, nil
				}
				if !isRetryable(resp, err) {
					return resp, err
				}

				lastResp = resp
				lastErr = err

				if attempt < cfg.MaxAttempts {
					timer := time.NewTimer(calculateBackoff(attempt, cfg))
					select {
					case <-ctx.Done():
						timer.Stop()
						return NewErrorResponse(
							req.ID,
							CodeCancelled,
							"Request cancelled during retry",
							"",
						), ctx.Err()
					case <-timer.C:
					}
				}
			}

			if lastErr != nil {
				return lastResp, fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
			}

			if lastResp.Error != nil {
				lastResp.Error.Details = fmt.Sprintf("%s (failed after %d retries)", lastResp.Error.Details, cfg.MaxAttempts)
			}

			return lastResp, nil
		}
	}
}

// ValidationMiddleware fills in missing IDs and timestamps and rejects
// requests without a type or with a malformed payload.
func ValidationMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			if req.ID == "" {
				req.ID = uuid.New().String()
			}
			if req.Timestamp.IsZero() {
				req.Timestamp = time.Now().UTC()
			}

			if req.Type == "" {
				return NewErrorResponse(
					req.ID,
					CodeValidation,
					"Request type is required",
					"Missing 'type' field in request",
				), nil
			}

			if len(req.Payload) == 0 {
				return NewErrorResponse(
					req.ID,
					CodeValidation,
					"Request payload is required",
					"Empty payload",
				), nil
			}

			if !json.Valid(req.Payload) {
				return NewErrorResponse(
					req.ID,
					CodeValidation,
					"Invalid JSON payload",
					"Payload must be valid JSON",
				), nil
			}

			req.SetMetadata("validated_at", time.Now().UTC().Format(time.RFC3339))

			return next(ctx, req)
		}
	}
}

func isRetryable(resp Response, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if resp.Error != nil {
		if resp.Error.Retryable {
			return true
		}
		return isRetryableCode(resp.Error.Code)
	}

	return err != nil
}

func calculateBackoff(attempt int, cfg *config.RetryConfig) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffMultiplier, float64(attempt))
	if backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	return time.Duration(backoff)
}

func extractTraceID(req Request) string {
	traceKeys := []string{
		"trace_id",
		"x-trace-id",
		"x-b3-traceid",
		"x-request-id",
		"correlation-id",
	}

	for _, key := range traceKeys {
		if val, ok := req.Metadata[key]; ok && val != "" {
			return val
		}
	}

	return ""
}
