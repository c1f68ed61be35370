package hylable

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/discuss"
	devhttp "github.com/randalmurphal/discuss/http"
)

// Configuration errors.
var (
	ErrConfigURLRequired = errors.New("hylable url is required")
	ErrConfigURLInvalid  = errors.New("hylable url must be absolute")
	ErrConfigAuth        = errors.New("hylable auth is misconfigured")
	ErrConfigBatchSize   = errors.New("batch_size must not be negative")
	ErrConfigPageSize    = errors.New("page_size must not be negative")
	ErrConfigMaxRetries  = errors.New("max_retries must not be negative")
)

// Request errors.
var (
	ErrCourseIDRequired     = errors.New("course id is required to list discussions")
	ErrDiscussionIDRequired = errors.New("discussion id is required")
)

// ErrDiscussionNotFound is returned when the service has no discussion with
// the requested id. It matches discuss.ErrDiscussionNotFound.
var ErrDiscussionNotFound = fmt.Errorf("hylable: %w", discuss.ErrDiscussionNotFound)

// notFound wraps a 404 for id so that both the domain sentinel and the
// transport error remain inspectable.
func notFound(id string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrDiscussionNotFound, id, cause)
}

// IsNotFound reports whether the error indicates a discussion was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, discuss.ErrDiscussionNotFound) || errors.Is(err, devhttp.ErrNotFound)
}

// IsUnauthorized reports whether the error indicates authentication failed.
func IsUnauthorized(err error) bool {
	return errors.Is(err, devhttp.ErrUnauthorized)
}

// IsForbidden reports whether the error indicates permission was denied.
func IsForbidden(err error) bool {
	return errors.Is(err, devhttp.ErrForbidden)
}

// IsRateLimited reports whether the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, devhttp.ErrRateLimited)
}

// IsRetryable reports whether the error is transient and should be retried.
func IsRetryable(err error) bool {
	return devhttp.IsRetryable(err)
}
