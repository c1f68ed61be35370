package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/discuss/auth"
	"github.com/randalmurphal/discuss/config"
	"github.com/randalmurphal/discuss/internal/output"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}
	cmd.AddCommand(newConfigShowCmd(a))
	cmd.AddCommand(newConfigSetCmd(a))
	cmd.AddCommand(newConfigUnsetCmd(a))
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved settings and where each came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(cmd.OutOrStdout())
			f.Info(fmt.Sprintf("Profile %s (%s)", a.resolved.Profile(), a.resolver.GlobalPath()))
			for _, key := range a.resolved.Keys() {
				value, src := a.resolved.GetWithSource(key)
				if slices.Contains(config.SecretKeys, key) {
					value = auth.Fingerprint(value)
				}
				f.Setting(key, value, string(src))
			}
			return nil
		},
	}
}

func (a *app) saver() config.SaveConfig {
	return config.SaveConfig{
		Path:      a.resolver.GlobalPath(),
		Profile:   a.resolver.Profile(),
		ValidKeys: config.Keys,
	}
}

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Save a setting in the selected profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.saver().Set(args[0], args[1]); err != nil {
				return err
			}
			output.NewFormatter(cmd.OutOrStdout()).Success(
				fmt.Sprintf("Set %s in profile %s", args[0], a.resolver.Profile()))
			return nil
		},
	}
}

func newConfigUnsetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a setting from the selected profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.saver().Delete(args[0]); err != nil {
				return err
			}
			output.NewFormatter(cmd.OutOrStdout()).Success(
				fmt.Sprintf("Removed %s from profile %s", args[0], a.resolver.Profile()))
			return nil
		},
	}
}
