package hylable

import (
	"strings"
	"time"

	"github.com/randalmurphal/discuss"
)

// Discussion is the wire form of a discussion.
type Discussion struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Topic       string    `json:"topic,omitempty"`
	Comment     string    `json:"comment,omitempty"`
	RecordedAt  time.Time `json:"recordedAt"`
	DurationSec int       `json:"duration_sec"`
	GroupName   string    `json:"group_name,omitempty"`
}

// ToDiscussion converts the wire form to the domain view. RecordedAt is
// normalized to UTC.
func (d Discussion) ToDiscussion() discuss.Discussion {
	return discuss.Discussion{
		ID:              d.ID,
		State:           discuss.State(d.Status),
		Topic:           d.Topic,
		Comments:        d.Comment,
		DurationSeconds: d.DurationSec,
		GroupName:       d.GroupName,
		RecordedAt:      d.RecordedAt.UTC(),
	}
}

// ListResponse is one page of GET /v1/courses/{course}/discussions.
type ListResponse struct {
	Discussions []Discussion `json:"discussions"`
	HasMore     bool         `json:"has_more"`
}

// Segment is one recognized utterance.
type Segment struct {
	Text    string `json:"text"`
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`
	Speaker string `json:"speaker,omitempty"`
}

// Transcript joins segment texts with newlines. No segments yields "".
func Transcript(segments []Segment) string {
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return strings.Join(texts, "\n")
}

// ASRResponse is the body of GET /v1/discussions/{id}/asr.
type ASRResponse struct {
	Segments []Segment `json:"segments"`
}

// BatchGetRequest is the body of POST /v1/discussions/asr:batchGet.
type BatchGetRequest struct {
	IDs []string `json:"ids"`
}

// BatchGetResult is the recognition result for one discussion.
type BatchGetResult struct {
	DiscussionID string    `json:"discussion_id"`
	Segments     []Segment `json:"segments"`
}

// BatchGetResponse lists results for the ids the service knows. Unknown ids
// are absent.
type BatchGetResponse struct {
	Results []BatchGetResult `json:"results"`
}
