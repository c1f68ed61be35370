package discuss

import (
	"errors"
	"fmt"
	"testing"
)

func TestRemoteError_Error(t *testing.T) {
	err := &RemoteError{Op: "list discussions", Err: errors.New("connection refused")}

	if got := err.Error(); got != "list discussions: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestRemote(t *testing.T) {
	cause := errors.New("timeout")

	if remote("op", nil) != nil {
		t.Error("remote(nil) should be nil")
	}

	wrapped := remote("get transcript", cause)
	if !IsRemote(wrapped) || !errors.Is(wrapped, cause) {
		t.Errorf("remote() = %v, want RemoteError wrapping cause", wrapped)
	}

	// Already wrapped errors keep their original operation.
	again := remote("get transcripts", fmt.Errorf("batch: %w", wrapped))
	var re *RemoteError
	if !errors.As(again, &re) || re.Op != "get transcript" {
		t.Errorf("re-wrapped op = %v", re)
	}
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantFound  bool
		wantRemote bool
	}{
		{"nil", nil, false, false},
		{"not found", notFound("dsc_1"), true, false},
		{"wrapped not found", fmt.Errorf("hylable: %w", ErrDiscussionNotFound), true, false},
		{"remote", remote("op", errors.New("x")), false, true},
		{"invalid", invalidArgument("count must be positive, got %d", 0), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.wantFound {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.wantFound)
			}
			if got := IsRemote(tt.err); got != tt.wantRemote {
				t.Errorf("IsRemote() = %v, want %v", got, tt.wantRemote)
			}
		})
	}
}

func TestInvalidArgument(t *testing.T) {
	err := invalidArgument("seconds must not be negative, got %d", -1)

	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
	if err.Error() != "invalid argument: seconds must not be negative, got -1" {
		t.Errorf("Error() = %q", err.Error())
	}
}
