// Package logger provides a JSON line logger whose field layout is tuned for
// Loki label extraction.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"healthdash/observability/types"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

// Log level constants ordered by severity (lowest to highest).
const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel converts a level name to a LogLevel. Matching is case
// insensitive; "warning" is accepted for WarnLevel. Unknown names map to
// InfoLevel.
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// String returns the lower-case level name used in log entries.
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// contextKeys lists the context values copied into every entry.
var contextKeys = []types.ContextKey{
	types.TraceIDKey,
	types.RequestIDKey,
	types.EndpointKey,
}

// LokiLogger implements types.Logger with one JSON object per line.
// Each entry carries timestamp, level, service, env, hostname and message,
// followed by context values, persistent fields and call fields, in that
// order of precedence (later wins).
type LokiLogger struct {
	// writeMu serializes writes to output; it is shared by derived loggers.
	writeMu          *sync.Mutex
	output           io.Writer
	serviceName      string
	environment      string
	hostname         string
	minLevel         LogLevel
	persistentFields types.Fields
	now              func() time.Time
}

// New creates a LokiLogger. A nil output writes to os.Stdout.
//
// Example:
//
//	log := New("healthdash.gateway", "production", "info", os.Stdout,
//		types.Fields{"version": "1.0.0"})
func New(serviceName, environment, logLevel string, output io.Writer, additionalFields types.Fields) *LokiLogger {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	if output == nil {
		output = os.Stdout
	}

	fields := make(types.Fields, len(additionalFields))
	for k, v := range additionalFields {
		fields[k] = v
	}

	return &LokiLogger{
		writeMu:          &sync.Mutex{},
		output:           output,
		serviceName:      serviceName,
		environment:      environment,
		hostname:         hostname,
		minLevel:         ParseLevel(logLevel),
		persistentFields: fields,
		now:              time.Now,
	}
}

// Info logs at INFO level.
func (l *LokiLogger) Info(ctx context.Context, msg string, fields types.Fields) {
	l.log(ctx, InfoLevel, msg, nil, fields)
}

// Error logs at ERROR level. The error text and its dynamic type are added
// as "error" and "error_type".
func (l *LokiLogger) Error(ctx context.Context, msg string, err error, fields types.Fields) {
	l.log(ctx, ErrorLevel, msg, err, fields)
}

// Warn logs at WARN level.
func (l *LokiLogger) Warn(ctx context.Context, msg string, fields types.Fields) {
	l.log(ctx, WarnLevel, msg, nil, fields)
}

// Debug logs at DEBUG level.
func (l *LokiLogger) Debug(ctx context.Context, msg string, fields types.Fields) {
	l.log(ctx, DebugLevel, msg, nil, fields)
}

// WithFields returns a child logger that shares output and level with l
// and adds fields to every entry.
//
// Example:
//
//	reqLog := log.WithFields(types.Fields{"request_type": "health.monitor"})
//	reqLog.Info(ctx, "Processing request", nil)
func (l *LokiLogger) WithFields(fields types.Fields) types.Logger {
	merged := make(types.Fields, len(l.persistentFields)+len(fields))
	for k, v := range l.persistentFields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	child := *l
	child.persistentFields = merged
	return &child
}

func (l *LokiLogger) log(ctx context.Context, level LogLevel, msg string, err error, fields types.Fields) {
	if level < l.minLevel {
		return
	}

	entry := make(types.Fields, 8+len(l.persistentFields)+len(fields))
	entry["timestamp"] = l.now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["service"] = l.serviceName
	entry["env"] = l.environment
	entry["hostname"] = l.hostname
	entry["message"] = msg

	if ctx != nil {
		for _, key := range contextKeys {
			if v, ok := ctx.Value(key).(string); ok && v != "" {
				entry[string(key)] = v
			}
		}
	}

	if err != nil {
		entry["error"] = err.Error()
		entry["error_type"] = fmt.Sprintf("%T", err)
	}

	for k, v := range l.persistentFields {
		entry[k] = v
	}
	for k, v := range fields {
		entry[k] = v
	}

	line, mErr := json.Marshal(entry)
	if mErr != nil {
		// A field was not serializable; keep the message rather than drop it.
		line, _ = json.Marshal(types.Fields{
			"timestamp":     entry["timestamp"],
			"level":         entry["level"],
			"service":       l.serviceName,
			"message":       msg,
			"marshal_error": mErr.Error(),
		})
	}
	line = append(line, '\n')

	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	_, _ = l.output.Write(line)
}
