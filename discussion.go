package discuss

import (
	"context"
	"time"
)

// State is the lifecycle state of a discussion as reported by the remote
// service. Values other than the constants below are passed through as-is.
type State string

// Known discussion states.
const (
	StateRecording State = "recording"
	StateCompleted State = "completed"
)

// IsRecording reports whether the discussion is still capturing audio.
func (s State) IsRecording() bool {
	return s == StateRecording
}

// Discussion is a read-only view of one recorded discussion session.
type Discussion struct {
	// ID is the opaque identifier assigned by the remote service.
	ID string `json:"id"`

	// State is the lifecycle state at query time.
	State State `json:"state"`

	// Topic is an optional free-text label.
	Topic string `json:"topic,omitempty"`

	// Comments is an optional free-text annotation.
	Comments string `json:"comments,omitempty"`

	// DurationSeconds is the elapsed recording time. Zero until the
	// recording completes.
	DurationSeconds int `json:"duration_seconds"`

	// GroupName is the group the discussion was recorded for, if any.
	GroupName string `json:"group_name,omitempty"`

	// RecordedAt is when recording started (UTC).
	RecordedAt time.Time `json:"recorded_at"`
}

// Duration returns DurationSeconds as a time.Duration.
func (d Discussion) Duration() time.Duration {
	return time.Duration(d.DurationSeconds) * time.Second
}

// ListOptions narrows a discussion listing.
type ListOptions struct {
	// State limits results to one lifecycle state. Empty means any state.
	State State

	// Limit caps the number of results. Zero means no cap.
	Limit int
}

// Lister lists discussions known to the remote service.
type Lister interface {
	ListDiscussions(ctx context.Context, opts ListOptions) ([]Discussion, error)
}

// TranscriptGetter fetches the transcript of a single discussion.
// Implementations return an error satisfying errors.Is(err,
// ErrDiscussionNotFound) for unknown ids, and "" when no transcript exists yet.
type TranscriptGetter interface {
	GetTranscript(ctx context.Context, id string) (string, error)
}

// BulkTranscriptGetter fetches several transcripts in one round trip.
// Ids unknown to the service are omitted from the returned map.
type BulkTranscriptGetter interface {
	GetTranscripts(ctx context.Context, ids []string) (map[string]string, error)
}

// Service is the full contract the retrieval layer depends on.
type Service interface {
	Lister
	TranscriptGetter
}

// LongerThan returns the discussions whose duration exceeds threshold, preserving
// order.
func LongerThan(discussions []Discussion, threshold time.Duration) []Discussion {
	out := make([]Discussion, 0, len(discussions))
	for _, d := range discussions {
		if d.Duration() > threshold {
			out = append(out, d)
		}
	}
	return out
}
