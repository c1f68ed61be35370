package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/discuss/auth"
	"github.com/randalmurphal/discuss/config"
	"github.com/randalmurphal/discuss/internal/output"
)

var errChecksFailed = errors.New("some checks failed")

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, credentials and connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(cmd.OutOrStdout())
			ok := true

			path := a.resolver.GlobalPath()
			if _, err := os.Stat(path); err == nil {
				f.Check("Config file", true, path)
			} else {
				f.Check("Config file", true, path+" (not found, using environment)")
			}
			f.Check("Profile", true, a.resolved.Profile())

			cfg, err := config.HylableConfig(a.resolved)
			if err != nil {
				f.Check("Configuration", false, err.Error())
				f.Warning("Fix the configuration before checking connectivity.")
				return errChecksFailed
			}
			f.Check("Configuration", true, cfg.URL)

			if cfg.CourseID == "" {
				f.Check("Course", false, "not set. Set course_id or HYLABLE_COURSE_ID")
				ok = false
			} else {
				f.Check("Course", true, cfg.CourseID)
			}

			if _, err := config.Location(a.resolved); err != nil {
				f.Check("Timezone", false, err.Error())
				ok = false
			} else {
				f.Check("Timezone", true, a.resolved.Get(config.KeyTimezone))
			}

			if cfg.Auth.Type == auth.TypeToken {
				if !checkToken(f, cfg.Auth.Token, a.now()) {
					ok = false
				}
			} else {
				f.Check("Credentials", true, string(cfg.Auth.Type)+" grant via "+cfg.Auth.TokenURL)
			}

			svc, err := a.deps.Connect(cfg, a.logger)
			if err != nil {
				f.Check("Connection", false, err.Error())
				return errChecksFailed
			}
			if err := svc.Ping(cmd.Context()); err != nil {
				f.Check("Connection", false, a.wrap(err).Error())
				ok = false
			} else {
				f.Check("Connection", true, "reachable")
				if remaining := svc.RateLimitRemaining(); remaining >= 0 {
					f.Check("Rate limit", true, fmt.Sprintf("%d requests remaining", remaining))
				}
			}

			if !ok {
				f.Warning("Some checks failed.")
				return errChecksFailed
			}
			f.Success("All checks passed.")
			return nil
		},
	}
}

// checkToken reports the fingerprint and expiry of a static token.
func checkToken(f *output.Formatter, token string, now time.Time) bool {
	fp := auth.Fingerprint(token)
	if err := auth.CheckExpiry(token, now); err != nil {
		f.Check("Token", false, fp+" "+err.Error())
		return false
	}
	exp, err := auth.TokenExpiry(token)
	switch {
	case err != nil:
		f.Check("Token", true, fp+" (opaque)")
	case exp.IsZero():
		f.Check("Token", true, fp+" (no expiry)")
	default:
		f.Check("Token", true, fmt.Sprintf("%s (expires in %s)", fp, exp.Sub(now).Round(time.Minute)))
	}
	return true
}
