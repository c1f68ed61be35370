package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	clierrors "github.com/randalmurphal/discuss/errors"
	"github.com/randalmurphal/discuss/internal/output"
	"github.com/randalmurphal/discuss/metrics"
)

func newTextCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "text <discussion-id>",
		Short: "Print the transcript of one discussion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			svc, err := a.connect(false)
			if err != nil {
				return err
			}
			fetcher, err := a.fetcher(svc)
			if err != nil {
				return err
			}

			text, err := fetcher.DiscussionText(cmd.Context(), id)
			if err != nil {
				return a.wrap(clierrors.WrapDiscussionError(err, id, errorOpts...))
			}
			if text == "" {
				output.NewFormatter(cmd.ErrOrStderr()).Info("No transcript yet for " + id)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newTextsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "texts <discussion-id>...",
		Short: "Print the transcripts of several discussions",
		Long: "Print the transcripts of several discussions, fetched in batches.\n\n" +
			"Unknown ids are reported and the command exits non-zero after " +
			"printing every transcript it could resolve.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.NewFormatter(cmd.OutOrStdout())
			warn := output.NewFormatter(cmd.ErrOrStderr())

			svc, err := a.connect(false)
			if err != nil {
				return err
			}
			fetcher, err := a.fetcher(svc)
			if err != nil {
				return err
			}

			batch, err := fetcher.DiscussionTexts(cmd.Context(), args)
			if err != nil {
				return a.wrap(err)
			}

			for _, r := range batch.Results {
				if r.Err != nil {
					warn.Warning(fmt.Sprintf("Discussion %s not found", r.ID))
					continue
				}
				out.Transcript(r.ID, r.Text)
			}

			failed := batch.Failed()
			if len(failed) == 0 {
				return nil
			}
			metrics.BatchFailures.WithLabelValues("not_found").Add(float64(len(failed)))
			return fmt.Errorf("%d of %d discussions not found: %s",
				len(failed), batch.Len(), strings.Join(failed, ", "))
		},
	}
}
