package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/randalmurphal/discuss"
)

func newDurationCmd(a *app) *cobra.Command {
	var (
		lang  string
		clock bool
	)

	cmd := &cobra.Command{
		Use:   "duration <seconds>",
		Short: "Render a number of seconds as hours, minutes and seconds",
		Example: "  discuss duration 3661            # 1時間1分1秒\n" +
			"  discuss duration --lang en 90    # 1 minute 30 seconds\n" +
			"  discuss duration --clock 3661    # 01_01_01",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q is not a whole number of seconds", discuss.ErrInvalidArgument, args[0])
			}

			layout := discuss.JapaneseLayout
			switch {
			case clock:
				layout = discuss.FileNameLayout
			case lang != "":
				tag, err := language.Parse(lang)
				if err != nil {
					return fmt.Errorf("%w: unknown language %q", discuss.ErrInvalidArgument, lang)
				}
				layout = discuss.LayoutFor(tag)
			}

			s, err := discuss.FormatDuration(seconds, layout)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "language of the unit labels (ja or en)")
	cmd.Flags().BoolVar(&clock, "clock", false, "zero-padded HH_MM_SS form used in file names")
	return cmd
}
