package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/discuss"
	"github.com/randalmurphal/discuss/config"
	clierrors "github.com/randalmurphal/discuss/errors"
	"github.com/randalmurphal/discuss/hylable"
	"github.com/randalmurphal/discuss/internal/version"
	"github.com/randalmurphal/discuss/notify"
)

// Service is what the commands need from a discussion service.
type Service interface {
	discuss.Service
	Ping(ctx context.Context) error
	RateLimitRemaining() int
}

// Dependencies are the external collaborators of the command tree.
type Dependencies struct {
	// Connect builds a service from a validated config.
	Connect func(cfg *hylable.Config, logger *slog.Logger) (Service, error)

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Gatherer is written to --metrics-file. Defaults to
	// prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Notifier receives export results. Nil means the configured targets.
	Notifier notify.Notifier
}

// DefaultDependencies connects to the Hylable API.
func DefaultDependencies() *Dependencies {
	return &Dependencies{
		Connect: func(cfg *hylable.Config, logger *slog.Logger) (Service, error) {
			client, err := hylable.NewClient(cfg, hylable.WithLogger(logger))
			if err != nil {
				return nil, err
			}
			return client, nil
		},
		Now:      time.Now,
		Gatherer: prometheus.DefaultGatherer,
	}
}

// app holds per-invocation state shared by the commands.
type app struct {
	deps *Dependencies

	profile     string
	configPath  string
	courseID    string
	logLevel    string
	metricsFile string

	logger   *slog.Logger
	resolver *config.Resolver
	resolved *config.Resolved
}

// NewRootCmd builds the discuss command tree around deps.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	a := &app{deps: deps}

	rootCmd := &cobra.Command{
		Use:   "discuss",
		Short: "Browse and export Hylable discussion transcripts",
		Long: "A CLI tool that lists recorded discussions of a Hylable course, " +
			"prints their speech recognition transcripts, and exports them to text files.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.profile, "profile", "", "config profile to use (default \"default\")")
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.config/hylable/config.yaml)")
	flags.StringVar(&a.courseID, "course", "", "course id, overriding the configured one")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newTextCmd(a))
	rootCmd.AddCommand(newTextsCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newDurationCmd(a))
	rootCmd.AddCommand(newDoctorCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

// Execute runs the command tree with args and writes metrics afterwards
// when --metrics-file is set.
func Execute(ctx context.Context, deps *Dependencies, args []string, stdout, stderr io.Writer) error {
	cmd := NewRootCmd(deps)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)

	if path, _ := cmd.PersistentFlags().GetString("metrics-file"); path != "" {
		gatherer := deps.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		if werr := prometheus.WriteToTextfile(path, gatherer); werr != nil && err == nil {
			err = fmt.Errorf("write metrics: %w", werr)
		}
	}
	return err
}

func (a *app) setup(stderr io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q", a.logLevel)
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	a.resolver = config.ForProfile(a.profile, a.configPath)
	a.resolved = a.resolver.ResolveWithFlags(map[string]string{
		config.KeyCourseID: a.courseID,
	})
	return nil
}

func (a *app) now() time.Time {
	if a.deps.Now != nil {
		return a.deps.Now()
	}
	return time.Now()
}

// clientConfig validates the resolved settings.
func (a *app) clientConfig() (*hylable.Config, error) {
	cfg, err := config.HylableConfig(a.resolved)
	if err != nil {
		return nil, clierrors.NewConfigError(err, errorOpts...)
	}
	return cfg, nil
}

// connect builds the service. requireCourse rejects a profile without a course.
func (a *app) connect(requireCourse bool) (Service, error) {
	cfg, err := a.clientConfig()
	if err != nil {
		return nil, err
	}
	if requireCourse && cfg.CourseID == "" {
		return nil, clierrors.NewNoCourseError(errorOpts...)
	}
	svc, err := a.deps.Connect(cfg, a.logger)
	if err != nil {
		return nil, clierrors.NewNotConfiguredError(err, errorOpts...)
	}
	return svc, nil
}

func (a *app) directory(svc Service) *discuss.Directory {
	return discuss.NewDirectory(svc, discuss.WithDirectoryLogger(a.logger))
}

func (a *app) fetcher(svc Service) (*discuss.Fetcher, error) {
	cfg, err := a.clientConfig()
	if err != nil {
		return nil, err
	}
	return discuss.NewFetcher(svc,
		discuss.WithBatchSize(cfg.BatchSize),
		discuss.WithFetcherLogger(a.logger),
	), nil
}

// wrap turns remote failures into user-facing errors.
func (a *app) wrap(err error) error {
	return clierrors.Wrap(err, a.resolved.Get(config.KeyURL), errorOpts...)
}

func (a *app) location() (*time.Location, error) {
	loc, err := config.Location(a.resolved)
	if err != nil {
		return nil, clierrors.NewNotConfiguredError(err, errorOpts...)
	}
	return loc, nil
}
