package notify

import (
	"context"
	"log/slog"
	"time"
)

// EventType identifies what happened.
type EventType string

// Event types.
const (
	EventExportCompleted   EventType = "export_completed"
	EventExportFailed      EventType = "export_failed"
	EventTranscriptMissing EventType = "transcript_missing"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event describes one notification.
type Event struct {
	Type      EventType      `json:"type"`
	CourseID  string         `json:"course_id"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"` // SeverityInfo, SeverityWarning, SeverityError
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Notifier delivers events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Targets lists where events are sent. Empty fields are skipped.
type Targets struct {
	WebhookURL   string
	SlackURL     string
	SlackChannel string
}

// New returns a notifier that logs every event and forwards it to each
// configured target.
func New(t Targets, logger *slog.Logger) Notifier {
	notifiers := []Notifier{NewLogNotifier(logger)}
	if t.WebhookURL != "" {
		notifiers = append(notifiers, NewWebhookNotifier(t.WebhookURL, nil))
	}
	if t.SlackURL != "" {
		notifiers = append(notifiers, NewSlackNotifier(t.SlackURL, WithSlackChannel(t.SlackChannel)))
	}
	if len(notifiers) == 1 {
		return notifiers[0]
	}
	multi := NewMultiNotifier(notifiers...)
	if logger != nil {
		multi.Logger = logger
	}
	return multi
}
