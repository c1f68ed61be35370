package errors

import (
	"errors"
	"strings"
)

// IsAuthError checks if an error is authentication-related.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrSessionExpired) {
		return true
	}

	return containsAny(err, "unauthenticated", "unauthorized", "401")
}

// IsConnectionError checks if an error is connection-related.
// This includes TLS errors, timeouts, and network connectivity issues.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrConnectionFailed) || isDialError(err) || isTLSError(err) || isTimeoutError(err)
}

func isDialError(err error) bool {
	return containsAny(err, "connection refused", "no such host", "network is unreachable", "dial tcp")
}

func isTLSError(err error) bool {
	return containsAny(err, "certificate", "tls", "x509")
}

func isTimeoutError(err error) bool {
	return containsAny(err, "timeout", "deadline exceeded")
}

func containsAny(err error, substrs ...string) bool {
	errStr := strings.ToLower(err.Error())
	for _, s := range substrs {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}

// IsConfigError checks if an error comes from missing or invalid configuration.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrNoCourse)
}

// IsPermissionError checks if an error is permission-related.
func IsPermissionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrPermissionDenied) {
		return true
	}

	return containsAny(err, "permission denied", "forbidden", "403")
}
