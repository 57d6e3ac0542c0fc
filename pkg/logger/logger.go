// Package logger provides structured logging for the PairGate pairing gateway.
// It exposes a small interface so the registries stay decoupled from the
// concrete backend; production wiring uses the zap implementation, tests use
// the noop implementation.
package logger

import (
	"context"
	"strings"
)

// Fields is a map of structured logging fields.
type Fields map[string]interface{}

// Logger defines the interface for structured logging
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, msg string, fields ...Fields)

	// Info logs an informational message
	Info(ctx context.Context, msg string, fields ...Fields)

	// Warn logs a warning message
	Warn(ctx context.Context, msg string, fields ...Fields)

	// Error logs an error message
	Error(ctx context.Context, msg string, err error, fields ...Fields)

	// Fatal logs a fatal message and exits the application
	Fatal(ctx context.Context, msg string, err error, fields ...Fields)

	// WithFields creates a new logger with additional base fields
	WithFields(fields Fields) Logger

	// WithComponent creates a new logger for a specific component
	WithComponent(component string) Logger
}

// sensitiveKeys lists field keys whose values are masked before emission.
// Token secrets must never reach the log stream in full.
var sensitiveKeys = []string{
	"token",
	"secret",
	"password",
	"public_key",
	"authorization",
}

// SanitizeValue masks sensitive field values.
func SanitizeValue(key string, value interface{}) interface{} {
	keyLower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(keyLower, sensitive) {
			if str, ok := value.(string); ok && len(str) > 0 {
				return maskString(str)
			}
			return "***REDACTED***"
		}
	}
	return value
}

// maskString partially masks a string value
func maskString(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}

//Personal.AI order the ending
