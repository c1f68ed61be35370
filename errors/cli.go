package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/discuss"
	"github.com/randalmurphal/discuss/auth"
	devhttp "github.com/randalmurphal/discuss/http"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// ErrorMessenger provides customizable error messages.
// Implement this interface to customize suggestions for your CLI.
type ErrorMessenger interface {
	// AuthErrorMessage returns the message and suggestion for rejected credentials.
	AuthErrorMessage() (message, suggestion string)

	// MissingCredentialsMessage returns the message and suggestion when no
	// credentials are configured.
	MissingCredentialsMessage() (message, suggestion string)

	// SessionExpiredMessage returns the message and suggestion for expired tokens.
	SessionExpiredMessage() (message, suggestion string)

	// PermissionDeniedMessage returns the message and suggestion for permission errors.
	PermissionDeniedMessage() (message, suggestion string)

	// ConnectionErrorMessage returns the message and suggestion for connection errors.
	// The serverURL parameter is the URL that failed to connect.
	ConnectionErrorMessage(serverURL string) (message, suggestion string)

	// TLSErrorMessage returns the message and suggestion for TLS/certificate errors.
	TLSErrorMessage(serverURL string) (message, suggestion string)

	// TimeoutErrorMessage returns the message and suggestion for timeout errors.
	TimeoutErrorMessage(serverURL string) (message, suggestion string)

	// RateLimitedMessage returns the message and suggestion when retries ran out.
	RateLimitedMessage() (message, suggestion string)

	// NotConfiguredMessage returns the message and suggestion for invalid configuration.
	NotConfiguredMessage() (message, suggestion string)

	// NoCourseMessage returns the message and suggestion when no course is set.
	NoCourseMessage() (message, suggestion string)

	// DiscussionNotFoundMessage returns the message and suggestion for an unknown id.
	DiscussionNotFoundMessage(id string) (message, suggestion string)
}

// DefaultMessenger provides default error messages.
type DefaultMessenger struct{}

func (m DefaultMessenger) AuthErrorMessage() (string, string) {
	return "The discussion service rejected your credentials.", "Check the configured token or client credentials."
}

func (m DefaultMessenger) MissingCredentialsMessage() (string, string) {
	return "No credentials are configured.", "Set a token or client credentials in your config file or environment."
}

func (m DefaultMessenger) SessionExpiredMessage() (string, string) {
	return "Your access token has expired.", "Obtain a new token and update your configuration."
}

func (m DefaultMessenger) PermissionDeniedMessage() (string, string) {
	return "You don't have permission to perform this action.",
		"Ask the course owner to grant your account access."
}

func (m DefaultMessenger) ConnectionErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("Cannot connect to server at %s", serverURL),
		"Check that:\n  - The URL is correct\n  - Your network connection is working"
}

func (m DefaultMessenger) TLSErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("TLS/certificate error connecting to %s", serverURL),
		"Check that the server certificate is valid."
}

func (m DefaultMessenger) TimeoutErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("Connection to %s timed out", serverURL),
		"The server may be overloaded or unreachable.\nTry again in a moment."
}

func (m DefaultMessenger) RateLimitedMessage() (string, string) {
	return "The discussion service is rate limiting requests.",
		"Wait a minute and try again, or lower the batch size."
}

func (m DefaultMessenger) NotConfiguredMessage() (string, string) {
	return "The discussion service is not configured.",
		"Set the url and credentials in your config file or environment."
}

func (m DefaultMessenger) NoCourseMessage() (string, string) {
	return "No course is configured.",
		"Set course_id in your config file or environment."
}

func (m DefaultMessenger) DiscussionNotFoundMessage(id string) (string, string) {
	return fmt.Sprintf("Discussion %s not found.", id),
		"Check the id against the discussion listing."
}

// WrapConfig configures error wrapping behavior.
type WrapConfig struct {
	Messenger ErrorMessenger
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom error messenger.
func WithMessenger(m ErrorMessenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

func getMessenger(opts []Option) ErrorMessenger {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.Messenger
}

// WrapAuthError wraps authentication-related errors with helpful guidance.
func WrapAuthError(err error, opts ...Option) error {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())
	messenger := getMessenger(opts)

	// Check for token expiration
	if errors.Is(err, auth.ErrTokenExpired) ||
		strings.Contains(errStr, "token") && (strings.Contains(errStr, "expired") || strings.Contains(errStr, "invalid")) {
		msg, suggestion := messenger.SessionExpiredMessage()
		return &CLIError{
			Err:        ErrSessionExpired,
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	if errors.Is(err, devhttp.ErrUnauthorized) || IsAuthError(err) {
		msg, suggestion := messenger.AuthErrorMessage()
		return &CLIError{
			Err:        ErrNotAuthenticated,
			Message:    msg,
			Details:    err.Error(),
			Suggestion: suggestion,
		}
	}

	if errors.Is(err, devhttp.ErrForbidden) || IsPermissionError(err) {
		msg, suggestion := messenger.PermissionDeniedMessage()
		return &CLIError{
			Err:        ErrPermissionDenied,
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	return err
}

// WrapConnectionError wraps connection-related errors with helpful guidance.
func WrapConnectionError(err error, serverURL string, opts ...Option) error {
	if !IsConnectionError(err) {
		return err
	}

	messenger := getMessenger(opts)
	switch {
	case isDialError(err):
		msg, suggestion := messenger.ConnectionErrorMessage(serverURL)
		return &CLIError{
			Err:        ErrConnectionFailed,
			Message:    msg,
			Suggestion: suggestion,
		}
	case isTLSError(err):
		msg, suggestion := messenger.TLSErrorMessage(serverURL)
		return &CLIError{
			Err:        ErrConnectionFailed,
			Message:    msg,
			Details:    err.Error(),
			Suggestion: suggestion,
		}
	case isTimeoutError(err):
		msg, suggestion := messenger.TimeoutErrorMessage(serverURL)
		return &CLIError{
			Err:        ErrConnectionFailed,
			Message:    msg,
			Suggestion: suggestion,
		}
	default:
		msg, suggestion := messenger.ConnectionErrorMessage(serverURL)
		return &CLIError{
			Err:        ErrConnectionFailed,
			Message:    msg,
			Details:    err.Error(),
			Suggestion: suggestion,
		}
	}
}

// WrapRateLimitError wraps exhausted rate limit retries.
func WrapRateLimitError(err error, opts ...Option) error {
	if err == nil || !errors.Is(err, devhttp.ErrRateLimited) {
		return err
	}

	msg, suggestion := getMessenger(opts).RateLimitedMessage()
	return &CLIError{
		Err:        ErrRateLimited,
		Message:    msg,
		Details:    err.Error(),
		Suggestion: suggestion,
	}
}

// WrapDiscussionError wraps a lookup failure for one discussion id. The
// original error stays in the chain.
func WrapDiscussionError(err error, id string, opts ...Option) error {
	if err == nil || !errors.Is(err, discuss.ErrDiscussionNotFound) {
		return err
	}

	msg, suggestion := getMessenger(opts).DiscussionNotFoundMessage(id)
	return &CLIError{
		Err:        err,
		Message:    msg,
		Suggestion: suggestion,
	}
}

// Wrap applies every wrapper that matches, most specific first.
func Wrap(err error, serverURL string, opts ...Option) error {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	for _, wrap := range []func(error) error{
		func(e error) error { return WrapRateLimitError(e, opts...) },
		func(e error) error { return WrapAuthError(e, opts...) },
		func(e error) error { return WrapConnectionError(e, serverURL, opts...) },
	} {
		if wrapped := wrap(err); wrapped != err {
			return wrapped
		}
	}
	return err
}

// NewNotConfiguredError creates an error for a profile that cannot build a client.
func NewNotConfiguredError(cause error, opts ...Option) error {
	messenger := getMessenger(opts)
	msg, suggestion := messenger.NotConfiguredMessage()
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &CLIError{
		Err:        ErrNotConfigured,
		Message:    msg,
		Details:    details,
		Suggestion: suggestion,
	}
}

// NewNoCourseError creates an error when no course is configured.
func NewNoCourseError(opts ...Option) error {
	messenger := getMessenger(opts)
	msg, suggestion := messenger.NoCourseMessage()
	return &CLIError{
		Err:        ErrNoCourse,
		Message:    msg,
		Suggestion: suggestion,
	}
}

// NewNotAuthenticatedError creates an error for missing credentials.
func NewNotAuthenticatedError(cause error, opts ...Option) error {
	messenger := getMessenger(opts)
	msg, suggestion := messenger.MissingCredentialsMessage()
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &CLIError{
		Err:        ErrNotAuthenticated,
		Message:    msg,
		Details:    details,
		Suggestion: suggestion,
	}
}

// NewConfigError classifies a profile that cannot build a client. Missing
// credentials are reported as not authenticated, everything else as not
// configured.
func NewConfigError(cause error, opts ...Option) error {
	if errors.Is(cause, auth.ErrMissingCredentials) {
		return NewNotAuthenticatedError(cause, opts...)
	}
	return NewNotConfiguredError(cause, opts...)
}
