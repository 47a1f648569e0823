package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"weatherdash/apis/openweather"
	"weatherdash/config"
	"weatherdash/manager"
	"weatherdash/render"
	"weatherdash/store"
)

type options struct {
	configPath string
	city       string
	live       bool
	interval   int
	dataDir    string
	noColor    bool
	verbose    bool
	apiURL     string
}

func New(version string) (*cobra.Command, error) {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "weatherdash",
		Args:          cobra.NoArgs,
		Short:         "Terminal dashboard for current weather and air quality",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "config.json", "path to the configuration file")
	flags.StringVar(&opts.city, "city", "", "city to show, overrides CITY from the configuration")
	flags.BoolVar(&opts.live, "live", true, "keep refreshing; --live=false draws the dashboard once and exits")
	flags.IntVar(&opts.interval, "interval", int(manager.RefreshInterval/time.Second), "seconds between weather service polls, at least 60 (the screen refreshes every 60 seconds)")
	flags.StringVar(&opts.dataDir, "data-dir", "data", "directory for the hourly snapshot files")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.apiURL, "api-url", openweather.DefaultBaseURL, "weather service base URL")
	if err := flags.MarkHidden("api-url"); err != nil {
		return nil, err
	}

	return cmd, nil
}

func run(cmd *cobra.Command, opts *options) error {
	setupLogger(cmd.ErrOrStderr(), opts.verbose)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.city != "" {
		cfg.City = opts.city
	}
	if refresh := int(manager.RefreshInterval / time.Second); opts.interval < refresh {
		return fmt.Errorf("interval must be at least %d seconds, got %d", refresh, opts.interval)
	}

	out, terminal := terminalWriter(cmd.OutOrStdout())

	dashboard := manager.New(
		openweather.New(cfg.APIKey, opts.apiURL),
		render.New(terminal && !opts.noColor),
		out,
		cfg.City,
	)
	dashboard.SetPollInterval(time.Duration(opts.interval) * time.Second)
	dashboard.SetClearScreen(terminal)

	records, err := store.EnsureInitialized(opts.dataDir, store.NormalizeLocation(cfg.City))
	if err != nil {
		slog.Error("snapshots will not be saved", "err", err)
	} else {
		dashboard.SetRecorder(records)
	}

	if !opts.live {
		dashboard.Cycle(cmd.Context())
		return nil
	}

	return dashboard.Run(cmd.Context())
}

func setupLogger(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// terminalWriter wraps w for ANSI output when it is a terminal.
func terminalWriter(w io.Writer) (io.Writer, bool) {
	f, ok := w.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return w, false
	}
	return colorable.NewColorable(f), true
}
