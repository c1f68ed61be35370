package cli

import (
	clierrors "github.com/randalmurphal/discuss/errors"
)

// messenger points error suggestions at the commands that fix them.
type messenger struct {
	clierrors.DefaultMessenger
}

func (messenger) NoCourseMessage() (string, string) {
	return "No course is configured.",
		"Run: discuss config set course_id <id>\nor pass --course <id>."
}

func (messenger) MissingCredentialsMessage() (string, string) {
	return "No credentials are configured.",
		"Run: discuss config set token <token>\nor set HYLABLE_TOKEN."
}

func (messenger) NotConfiguredMessage() (string, string) {
	return "The discussion service is not configured.",
		"Run: discuss config show\nto see the resolved settings."
}

var errorOpts = []clierrors.Option{clierrors.WithMessenger(messenger{})}

// Hint returns a follow-up suggestion for err, or "" when there is none.
func Hint(err error) string {
	if clierrors.IsConfigError(err) || clierrors.IsAuthError(err) || clierrors.IsConnectionError(err) {
		return "Run 'discuss doctor' to check your setup."
	}
	return ""
}
