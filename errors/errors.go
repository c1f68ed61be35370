package errors

import "errors"

// Common CLI errors with actionable guidance.
var (
	// ErrNotAuthenticated indicates the credentials were rejected or missing.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotConfigured indicates the selected profile cannot build a client.
	ErrNotConfigured = errors.New("not configured")

	// ErrNoCourse indicates a listing was requested without a course id.
	ErrNoCourse = errors.New("no course configured")

	// ErrConnectionFailed indicates the server is unreachable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrPermissionDenied indicates insufficient permissions.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrSessionExpired indicates the auth token has expired.
	ErrSessionExpired = errors.New("session expired")

	// ErrRateLimited indicates the service kept rejecting requests.
	ErrRateLimited = errors.New("rate limited")
)
