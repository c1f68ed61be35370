package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/discuss"
	"github.com/randalmurphal/discuss/internal/output"
)

func newListCmd(a *app) *cobra.Command {
	var (
		recording   bool
		count       int
		minDuration time.Duration
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discussions of the course",
		Long: "List discussions of the configured course, newest first.\n\n" +
			"With --recording or --count only ids are printed; otherwise every " +
			"discussion is shown with its state, start time and duration.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := output.NewFormatter(cmd.OutOrStdout())

			svc, err := a.connect(true)
			if err != nil {
				return err
			}
			dir := a.directory(svc)

			var ids []string
			switch {
			case recording:
				ids, err = dir.RecordingDiscussionIDs(ctx)
			case cmd.Flags().Changed("count"):
				ids, err = dir.DiscussionIDs(ctx, count)
			default:
				return listAll(a, cmd, dir, minDuration, asJSON)
			}
			if err != nil {
				return a.wrap(err)
			}

			if asJSON {
				if ids == nil {
					ids = []string{}
				}
				return f.JSON(ids)
			}
			f.IDs(ids)
			return nil
		},
	}

	cmd.Flags().BoolVar(&recording, "recording", false, "only ids of discussions still recording")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "only the ids of the newest N discussions")
	cmd.Flags().DurationVar(&minDuration, "min-duration", 0, "only discussions longer than this (e.g. 10m)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.MarkFlagsMutuallyExclusive("recording", "count")

	return cmd
}

func listAll(a *app, cmd *cobra.Command, dir *discuss.Directory, minDuration time.Duration, asJSON bool) error {
	f := output.NewFormatter(cmd.OutOrStdout())

	discussions, err := dir.AllDiscussions(cmd.Context())
	if err != nil {
		return a.wrap(err)
	}
	if minDuration > 0 {
		discussions = discuss.LongerThan(discussions, minDuration)
	}

	if asJSON {
		return f.JSON(discussions)
	}
	if len(discussions) == 0 {
		f.Info("No discussions found")
		return nil
	}
	loc, err := a.location()
	if err != nil {
		return err
	}
	return f.Discussions(discussions, loc)
}
