package errors

import (
	"context"
	"errors"
	"os"
	"strings"

	"codeberg.org/biolink/client/internal/identity"
)

// error categories for classification
const (
	CategoryRateLimited  = "rate_limited"
	CategoryNetwork      = "network"
	CategoryUnauthorized = "unauthorized"
	CategoryUnavailable  = "unavailable"
	CategoryDecode       = "decode"
	CategoryStorage      = "storage"
	CategoryTimeout      = "timeout"
	CategoryUnknown      = "unknown"
)

// Classify analyzes an error and returns its category and sanitized message.
func Classify(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{CategoryUnknown, ""}
	}

	isProduction := os.Getenv("ENVIRONMENT") == "production"

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorInfo{CategoryTimeout, ternary(isProduction, "request timed out", err.Error())}

	case errors.Is(err, context.Canceled):
		return ErrorInfo{CategoryTimeout, ternary(isProduction, "request canceled", err.Error())}

	case errors.Is(err, identity.ErrRateLimited):
		return ErrorInfo{CategoryRateLimited, ternary(isProduction, "too many requests", err.Error())}

	case errors.Is(err, identity.ErrUnauthenticated):
		return ErrorInfo{CategoryUnauthorized, ternary(isProduction, "not signed in", err.Error())}

	case errors.Is(err, identity.ErrDecode):
		return ErrorInfo{CategoryDecode, ternary(isProduction, "unexpected response", err.Error())}

	case errors.Is(err, identity.ErrUnavailable):
		return ErrorInfo{CategoryUnavailable, ternary(isProduction, "service unavailable", err.Error())}

	case identity.IsTransport(err):
		return ErrorInfo{CategoryNetwork, ternary(isProduction, "connection error occurred", err.Error())}
	}

	// fallback to string matching for unknown error types
	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline") {
		return ErrorInfo{CategoryTimeout, ternary(isProduction, "request timed out", err.Error())}
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dial") {
		return ErrorInfo{CategoryNetwork, ternary(isProduction, "connection error occurred", err.Error())}
	}

	if strings.Contains(errMsg, "storage") || strings.Contains(errMsg, "quota") ||
		strings.Contains(errMsg, "redis") {
		return ErrorInfo{CategoryStorage, ternary(isProduction, "storage unavailable", err.Error())}
	}

	return ErrorInfo{CategoryUnknown, ternary(isProduction, "an error occurred", err.Error())}
}

// sanitizes error messages for production
func Sanitize(err error) string {
	if err == nil {
		return ""
	}

	return Classify(err).Sanitized
}

// ternary helper for cleaner conditional assignment
func ternary(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}

	return falseVal
}
