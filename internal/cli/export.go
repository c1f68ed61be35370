package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/discuss/config"
	"github.com/randalmurphal/discuss/export"
	"github.com/randalmurphal/discuss/internal/output"
	"github.com/randalmurphal/discuss/notify"
)

func newExportCmd(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every transcript of the course to text files",
		Long: "Write the transcript of every discussion in the course to " +
			"<out>/<course-id>/, one .asr.txt file per discussion.\n\n" +
			"Existing files are appended to. Discussions without a transcript " +
			"are skipped.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(cmd.OutOrStdout())

			svc, err := a.connect(true)
			if err != nil {
				return err
			}
			fetcher, err := a.fetcher(svc)
			if err != nil {
				return err
			}
			loc, err := a.location()
			if err != nil {
				return err
			}

			if outDir == "" {
				outDir = a.resolved.Get(config.KeyOutputDir)
			}
			courseID := a.resolved.Get(config.KeyCourseID)
			exporter := &export.Exporter{
				Directory: a.directory(svc),
				Fetcher:   fetcher,
				Dir:       filepath.Join(outDir, courseID),
				Location:  loc,
				Logger:    a.logger,
			}

			sum, err := exporter.Run(cmd.Context())
			a.notifyExport(cmd.Context(), a.notifier(), courseID, sum, err)
			if err != nil {
				return a.wrap(err)
			}

			f.Success(fmt.Sprintf("Exported %d of %d discussions to %s",
				sum.Written, sum.Discussions, exporter.Dir))
			if sum.Empty > 0 {
				f.Info(fmt.Sprintf("%d discussions have no transcript yet", sum.Empty))
			}
			if sum.Failed > 0 {
				return fmt.Errorf("%d discussions could not be fetched: %v", sum.Failed, sum.FailedIDs)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from output_dir)")
	return cmd
}

func (a *app) notifier() notify.Notifier {
	if a.deps.Notifier != nil {
		return a.deps.Notifier
	}
	return notify.New(config.NotifyTargets(a.resolved), a.logger)
}

// notifyExport reports the outcome of an export. Delivery failures are logged
// and do not change the command result.
func (a *app) notifyExport(ctx context.Context, n notify.Notifier, courseID string, sum *export.Summary, runErr error) {
	event := notify.Event{
		Type:      notify.EventExportCompleted,
		CourseID:  courseID,
		Severity:  notify.SeverityInfo,
		Timestamp: a.now(),
	}
	switch {
	case runErr != nil:
		event.Type = notify.EventExportFailed
		event.Severity = notify.SeverityError
		event.Message = runErr.Error()
	case sum.Failed > 0:
		event.Type = notify.EventTranscriptMissing
		event.Severity = notify.SeverityWarning
		event.Message = fmt.Sprintf("%d discussions could not be fetched: %s",
			sum.Failed, strings.Join(sum.FailedIDs, ", "))
	default:
		event.Message = fmt.Sprintf("Exported %d of %d discussions", sum.Written, sum.Discussions)
	}
	if sum != nil {
		event.Metadata = map[string]any{
			"written": sum.Written,
			"empty":   sum.Empty,
			"failed":  sum.Failed,
		}
	}

	if err := n.Notify(ctx, event); err != nil {
		a.logger.WarnContext(ctx, "export notification failed", "error", err)
	}
}
