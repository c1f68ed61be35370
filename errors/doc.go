// Package errors provides CLI error patterns with user-friendly messaging.
//
// Core types:
//   - CLIError: Wraps errors with message, suggestion, and details
//   - ErrorMessenger: Interface for customizing error messages
//
// Sentinel errors for common scenarios:
//   - ErrNotAuthenticated: Credentials were rejected
//   - ErrSessionExpired: Auth token has expired
//   - ErrNotConfigured: The profile cannot build a client
//   - ErrNoCourse: No course id is configured
//   - ErrConnectionFailed: Server is unreachable
//   - ErrPermissionDenied: Insufficient permissions
//   - ErrRateLimited: Retries ran out on rate limiting
//
// Example usage:
//
//	// Wrap a remote failure with default messages
//	if err := dir.AllDiscussions(ctx); err != nil {
//	    return errors.Wrap(err, cfg.URL)
//	}
//
//	// Wrap with custom messages
//	type MyMessenger struct{ errors.DefaultMessenger }
//	func (m MyMessenger) NoCourseMessage() (string, string) {
//	    return "No course set.", "Run 'discuss config set course_id <id>'."
//	}
//
//	wrapped := errors.NewNoCourseError(errors.WithMessenger(MyMessenger{}))
//
//	// Check error types
//	if errors.IsAuthError(err) {
//	    // Handle auth-related error
//	}
package errors
