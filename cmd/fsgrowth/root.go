package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/danpilch/fsgrowth/pkg/config"
	"github.com/danpilch/fsgrowth/pkg/growth"
	"github.com/danpilch/fsgrowth/pkg/history"
	"github.com/danpilch/fsgrowth/pkg/logging"
	"github.com/danpilch/fsgrowth/pkg/notify"
	"github.com/danpilch/fsgrowth/pkg/report"
	"github.com/danpilch/fsgrowth/pkg/runner"
	"github.com/danpilch/fsgrowth/pkg/sampler"
)

// deps holds the process-level collaborators so tests can replace them.
type deps struct {
	stdout     io.Writer
	stderr     io.Writer
	newSampler func(source string) (sampler.Sampler, error)
	newDialer  func(cfg config.SMTPConfig, hostname string) notify.Dialer
	hostname   func() (string, error)
}

func defaultDeps() deps {
	return deps{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		newSampler: sampler.New,
		newDialer:  notify.NewDialer,
		hostname:   os.Hostname,
	}
}

type options struct {
	configPath  string
	filesystem  string
	historyFile string
	source      string
	update      bool
	report      bool
	quiet       bool
	verbose     bool
	dryRun      bool
}

// run executes the command and returns the process exit code.
// Errors are always written to stderr, including under --quiet.
func run(args []string, d deps) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(d)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(d.stderr, "fsgrowth: %v\n", err)
		return growth.ExitCode(err)
	}
	return growth.ExitOK
}

func newRootCmd(d deps) *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "fsgrowth",
		Short: "Record filesystem usage and mail a daily growth report",
		Long: `fsgrowth samples disk usage for one mount point, appends the sample to a
CSV history file and mails a report with a usage chart, the recent history
and the day-over-day change in used space.

Run --update and --report from cron, separately or together.`,
		Example: `  fsgrowth -f /omd/data --update
  fsgrowth -f /omd/data --report --quiet
  fsgrowth -f /omd/data -H /var/lib/fsgrowth/omd.csv --update --report`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), cmd.Flags(), o, d)
		},
	}
	cmd.SetOut(d.stdout)
	cmd.SetErr(d.stderr)

	flags := cmd.Flags()
	flags.StringVarP(&o.configPath, "config", "c", config.DefaultPath, "Path to config TOML")
	flags.StringVarP(&o.filesystem, "filesystem", "f", "", "Mount point to sample (overrides sampler.filesystem)")
	flags.StringVarP(&o.historyFile, "history-file", "H", "", "History CSV path (overrides history.file)")
	flags.StringVar(&o.source, "source", "", "Usage source: statfs or gopsutil (overrides sampler.source)")
	flags.BoolVar(&o.update, "update", false, "Append today's sample to the history file")
	flags.BoolVar(&o.report, "report", false, "Render the report and send it")
	flags.BoolVarP(&o.quiet, "quiet", "q", false, "Suppress console output except errors")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&o.dryRun, "dry-run", false, "Write the report email to stdout instead of sending it")

	cmd.MarkFlagsOneRequired("update", "report")
	cmd.MarkFlagsMutuallyExclusive("quiet", "verbose")

	return cmd
}

func execute(ctx context.Context, flags *pflag.FlagSet, o options, d deps) error {
	cfg, err := config.LoadOptional(o.configPath, flags.Changed("config"))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if flags.Changed("filesystem") {
		cfg.Sampler.Filesystem = o.filesystem
	}
	if flags.Changed("history-file") {
		cfg.History.File = o.historyFile
	}
	if flags.Changed("source") {
		cfg.Sampler.Source = o.source
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, logging.Options{
		Verbose: o.verbose,
		Quiet:   o.quiet,
		Console: d.stderr,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logger.WithError(err).Debug("Closing log file")
		}
	}()

	hostname, err := d.hostname()
	if err != nil {
		logger.WithError(err).Warn("Cannot determine hostname")
	}

	s, err := d.newSampler(cfg.Sampler.Source)
	if err != nil {
		return err
	}

	n, err := notify.NewWithDialer(cfg.SMTP, d.newDialer(cfg.SMTP, hostname), logger)
	if err != nil {
		return err
	}
	var deliver runner.Notifier = n
	if o.dryRun {
		deliver = notify.Printer{Notifier: n, Out: d.stdout}
	}

	var console io.Writer
	if !o.quiet && !o.dryRun {
		console = d.stdout
	}

	r := runner.New(s, history.Open(cfg.History.File), deliver, logger, runner.Options{
		RequireMountpoint: cfg.Sampler.RequireMountpoint,
		Console:           console,
		Report: report.Options{
			Environment: cfg.Report.Environment,
			Hostname:    hostname,
			Rows:        cfg.Report.Rows,
			Chart: report.ChartOptions{
				Width:  cfg.Report.ChartWidth,
				Height: cfg.Report.ChartHeight,
			},
		},
	})

	logger.WithFields(logrus.Fields{
		"filesystem": cfg.Sampler.Filesystem,
		"history":    cfg.History.File,
		"update":     o.update,
		"report":     o.report,
	}).Debug("Starting run")

	return r.Run(ctx, cfg.Sampler.Filesystem, o.update, o.report)
}
