package discuss

import (
	"errors"
	"fmt"
)

// Retrieval errors.
var (
	// ErrInvalidArgument indicates malformed local input, such as a negative
	// duration or a non-positive count. It is always returned before any
	// remote call is made.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDiscussionNotFound indicates the remote service has no discussion
	// with the requested id.
	ErrDiscussionNotFound = errors.New("discussion not found")
)

// RemoteError wraps a failure reported by the remote service that is not a
// per-id lookup miss (connectivity, authentication, rate limiting).
type RemoteError struct {
	Op  string // Operation that failed (e.g., "list discussions")
	Err error  // Underlying error from the service client
}

func (e *RemoteError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// remote wraps err as a RemoteError unless it is nil or already one.
func remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err indicates an unknown discussion id.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDiscussionNotFound)
}

// IsRemote reports whether err came from the remote service.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
