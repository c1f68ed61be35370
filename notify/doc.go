// Package notify reports the outcome of transcript exports.
//
// A Notifier receives an Event. LogNotifier writes it to slog,
// WebhookNotifier posts it as JSON, SlackNotifier posts a Slack attachment,
// and MultiNotifier fans out to several of them. New builds the usual
// combination from a set of Targets:
//
//	n := notify.New(notify.Targets{SlackURL: hook, SlackChannel: "#class"}, logger)
//	err := n.Notify(ctx, notify.Event{
//	    Type:     notify.EventExportCompleted,
//	    CourseID: "crs_1",
//	    Message:  "Exported 12 transcripts",
//	})
package notify
